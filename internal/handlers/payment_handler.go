package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/middleware"
	"accountsvc/internal/services"
)

// PaymentHandler handles payroll uploads and employee salary lookups.
type PaymentHandler struct {
	payments services.PaymentServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments services.PaymentServicer) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// PaymentRequest is one payroll entry in an upload or update.
type PaymentRequest struct {
	Employee string `json:"employee" binding:"required,email"`
	Period   string `json:"period" binding:"required,payroll_period"`
	Salary   int64  `json:"salary" binding:"min=0"`
}

// GetPayment returns the calling employee's payments: all periods, or one
// when the period query parameter is present.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	if period := c.Query("period"); period != "" {
		summary, err := h.payments.GetPaymentForPeriod(principal.Email, period)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
		return
	}

	summaries, err := h.payments.GetPayments(principal.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// UploadPayrolls saves a batch of payments.
func (h *PaymentHandler) UploadPayrolls(c *gin.Context) {
	var req []PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	inputs := make([]services.PaymentInput, 0, len(req))
	for _, p := range req {
		inputs = append(inputs, services.PaymentInput{Employee: p.Employee, Period: p.Period, Salary: p.Salary})
	}

	if err := h.payments.UploadPayrolls(inputs); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Added successfully!"})
}

// UpdateSalary changes one existing payment's salary.
func (h *PaymentHandler) UpdateSalary(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	err := h.payments.UpdateSalary(services.PaymentInput{Employee: req.Employee, Period: req.Period, Salary: req.Salary})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Updated successfully!"})
}
