package handler

import (
	"strconv"
	"time"

	"github.com/flightworks/aeroops-api/internal/application/service"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/flightworks/aeroops-api/internal/presentation/http/dto/request"
	"github.com/flightworks/aeroops-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	paymentService *service.PaymentService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService, paymentService *service.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
	}
}

// Create handles invoice creation
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.invoiceService.CreateInvoice(c.Request.Context(), *userID, req.ToServiceInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created", gin.H{
		"invoice":         result.Invoice,
		"ledger_entry_id": result.LedgerEntryID,
	})
}

// Get handles retrieving a single invoice with its items
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved", gin.H{"invoice": invoice})
}

// List handles listing invoices with filters
func (h *InvoiceHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.InvoiceFilterParams{
		Pagination: &repository.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search: c.Query("search"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		if status, ok := enum.ParseInvoiceStatus(statusStr); ok {
			params.Status = &status
		}
	}
	if userIDStr := c.Query("user_id"); userIDStr != "" {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			params.UserID = &userID
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

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved", result)
}

// UpdateStatus handles invoice status transitions
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	status, ok := enum.ParseInvoiceStatus(req.Status)
	if !ok {
		response.BadRequest(c, "Unknown invoice status")
		return
	}

	result, err := h.invoiceService.UpdateStatus(c.Request.Context(), *userID, id, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice status updated", gin.H{
		"status":          result.Status,
		"ledger_entry_id": result.LedgerEntryID,
	})
}

// Recalculate handles server-side recomputation of invoice totals
func (h *InvoiceHandler) Recalculate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	totals, err := h.invoiceService.RecalculateTotals(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice totals recalculated", gin.H{
		"sub_total":   float64(totals.SubTotal) / 100,
		"tax_total":   float64(totals.TaxTotal) / 100,
		"total":       float64(totals.Total) / 100,
		"balance_due": float64(totals.BalanceDue) / 100,
	})
}

// RecordPayment handles recording a payment against an invoice
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), *userID, id, req.ToServiceInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded", gin.H{
		"payment":         result.Payment,
		"ledger_entry_id": result.LedgerEntryID,
		"total_paid":      float64(result.NewTotalPaid) / 100,
		"balance_due":     float64(result.NewBalanceDue) / 100,
		"status":          result.NewStatus,
	})
}

// ListPayments handles listing payments recorded against an invoice
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved", gin.H{"payments": payments})
}

// ListLedger handles listing a member's ledger entries
func (h *InvoiceHandler) ListLedger(c *gin.Context) {
	authUserID := GetUserID(c)
	if authUserID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	// Members see their own ledger; admins can inspect any member's
	targetID := *authUserID
	if userIDStr := c.Query("user_id"); userIDStr != "" && IsAdmin(c) {
		if parsed, err := uuid.Parse(userIDStr); err == nil {
			targetID = parsed
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	result, err := h.invoiceService.ListLedgerEntries(c.Request.Context(), targetID, &repository.PaginationParams{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Ledger entries retrieved", result)
}
