package handler

import (
	"strconv"

	"github.com/flightworks/aeroops-api/internal/application/service"
	"github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AircraftHandler handles fleet HTTP requests
type AircraftHandler struct {
	aircraftService *service.AircraftService
}

// NewAircraftHandler creates a new aircraft handler
func NewAircraftHandler(aircraftService *service.AircraftService) *AircraftHandler {
	return &AircraftHandler{aircraftService: aircraftService}
}

// Get handles retrieving a single aircraft
func (h *AircraftHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid aircraft ID")
		return
	}

	aircraft, err := h.aircraftService.GetAircraft(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Aircraft retrieved", gin.H{"aircraft": aircraft})
}

// List handles listing the fleet
func (h *AircraftHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	result, err := h.aircraftService.ListAircraft(c.Request.Context(), &repository.PaginationParams{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Aircraft retrieved", result)
}
