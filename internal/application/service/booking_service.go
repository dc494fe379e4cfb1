package service

import (
	"context"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/pkg/apperror"
	"github.com/flightworks/aeroops-api/pkg/pagination"
	"github.com/google/uuid"
)

// BookingService handles booking reads for the scheduling views. Check-in
// mutations live in CheckinService.
type BookingService struct {
	bookingRepo repository.BookingRepository
}

// NewBookingService creates a new booking service
func NewBookingService(bookingRepo repository.BookingRepository) *BookingService {
	return &BookingService{bookingRepo: bookingRepo}
}

// GetBooking retrieves a booking by ID
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NewNotFoundError("Booking")
	}
	return booking, nil
}

// ListBookings lists bookings with filtering
func (s *BookingService) ListBookings(ctx context.Context, params *repository.BookingFilterParams) (*pagination.PaginatedResult[entity.Booking], error) {
	bookings, total, err := s.bookingRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bookings, pag), nil
}
