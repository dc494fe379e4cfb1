package handler

import (
	"strconv"
	"time"

	"github.com/flightworks/aeroops-api/internal/application/service"
	"github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/internal/presentation/http/dto/request"
	"github.com/flightworks/aeroops-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingHandler handles booking and check-in HTTP requests
type BookingHandler struct {
	bookingService    *service.BookingService
	checkinService    *service.CheckinService
	correctionService *service.CorrectionService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	bookingService *service.BookingService,
	checkinService *service.CheckinService,
	correctionService *service.CorrectionService,
) *BookingHandler {
	return &BookingHandler{
		bookingService:    bookingService,
		checkinService:    checkinService,
		correctionService: correctionService,
	}
}

// Get handles retrieving a single booking
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking retrieved", gin.H{"booking": booking})
}

// List handles listing bookings with filters
func (h *BookingHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.BookingFilterParams{
		Pagination: &repository.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
	}

	if memberIDStr := c.Query("member_id"); memberIDStr != "" {
		if memberID, err := uuid.Parse(memberIDStr); err == nil {
			params.MemberID = &memberID
		}
	}
	if aircraftIDStr := c.Query("aircraft_id"); aircraftIDStr != "" {
		if aircraftID, err := uuid.Parse(aircraftIDStr); err == nil {
			params.AircraftID = &aircraftID
		}
	}
	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}
	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			params.EndDate = &endDate
		}
	}
	if checkedInStr := c.Query("checked_in"); checkedInStr != "" {
		if checkedIn, err := strconv.ParseBool(checkedInStr); err == nil {
			params.CheckedIn = &checkedIn
		}
	}

	result, err := h.bookingService.ListBookings(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bookings retrieved", result)
}

// ApproveCheckin handles post-flight check-in approval
func (h *BookingHandler) ApproveCheckin(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID")
		return
	}

	var req request.ApproveCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoiceID, err := h.checkinService.ApproveCheckin(c.Request.Context(), *userID, id, req.ToServiceInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Check-in approved", gin.H{"invoice_id": invoiceID})
}

// FinalizeCheckin completes the booking-lock step of a prior partial approval
func (h *BookingHandler) FinalizeCheckin(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID")
		return
	}

	var req request.FinalizeCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.checkinService.FinalizeCheckin(c.Request.Context(), *userID, id, req.InvoiceID, req.ToServiceInput()); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Check-in finalized", gin.H{"invoice_id": req.InvoiceID})
}

// CorrectCheckin handles meter-reading corrections on an approved check-in
func (h *BookingHandler) CorrectCheckin(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID")
		return
	}

	var req request.CorrectCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.correctionService.CorrectCheckin(c.Request.Context(), *userID, id, req.ToServiceInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Check-in corrected", gin.H{
		"applied_delta":         result.AppliedDelta,
		"total_time_in_service": result.NewTotalTimeInService,
	})
}
