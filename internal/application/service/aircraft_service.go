package service

import (
	"context"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/pkg/apperror"
	"github.com/flightworks/aeroops-api/pkg/pagination"
	"github.com/google/uuid"
)

// AircraftService handles fleet reads. The time-in-service counter is only
// ever written by the check-in and correction services.
type AircraftService struct {
	aircraftRepo repository.AircraftRepository
}

// NewAircraftService creates a new aircraft service
func NewAircraftService(aircraftRepo repository.AircraftRepository) *AircraftService {
	return &AircraftService{aircraftRepo: aircraftRepo}
}

// GetAircraft retrieves an aircraft by ID
func (s *AircraftService) GetAircraft(ctx context.Context, id uuid.UUID) (*entity.Aircraft, error) {
	aircraft, err := s.aircraftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if aircraft == nil {
		return nil, apperror.NewNotFoundError("Aircraft")
	}
	return aircraft, nil
}

// ListAircraft lists the fleet
func (s *AircraftService) ListAircraft(ctx context.Context, params *repository.PaginationParams) (*pagination.PaginatedResult[entity.Aircraft], error) {
	fleet, total, err := s.aircraftRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(fleet, pag), nil
}
