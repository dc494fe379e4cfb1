package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a member, instructor or administrator of the flight school
type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	FirstName     string         `gorm:"size:255;not null" json:"first_name"`
	LastName      string         `gorm:"size:255;not null" json:"last_name"`
	Email         string         `gorm:"size:255;unique;not null" json:"email"`
	Password      string         `gorm:"size:255" json:"-"`
	Phone         *string        `gorm:"size:50" json:"phone,omitempty"`
	LicenceNumber *string        `gorm:"size:50" json:"licence_number,omitempty"`
	MedicalExpiry *time.Time     `gorm:"type:date" json:"medical_expiry,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Roles    []Role    `gorm:"many2many:user_has_roles;foreignKey:ID;joinForeignKey:user_id;References:ID;joinReferences:role_id" json:"roles,omitempty"`
	Invoices []Invoice `gorm:"foreignKey:UserID" json:"-"`
	Bookings []Booking `gorm:"foreignKey:MemberID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// RoleNames returns the names of the user's roles
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// PermissionNames returns the deduplicated permission names across roles
func (u *User) PermissionNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if !seen[p.Name] {
				seen[p.Name] = true
				names = append(names, p.Name)
			}
		}
	}
	return names
}

// Role represents a role in the RBAC system
type Role struct {
	ID          uint         `gorm:"primary_key" json:"id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Permissions []Permission `gorm:"many2many:role_has_permissions;foreignKey:ID;joinForeignKey:role_id;References:ID;joinReferences:permission_id" json:"permissions,omitempty"`
}

// TableName returns the table name for the Role model
func (Role) TableName() string {
	return "roles"
}

// Permission represents a permission in the RBAC system
type Permission struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;unique;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Permission model
func (Permission) TableName() string {
	return "permissions"
}
