package handler

import (
	"net/http"

	"billbook/internal/middleware"
	"billbook/internal/service"
	"billbook/pkg/pagination"
	"billbook/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments")
	{
		payments.POST("", middleware.RequireAuth(), h.RecordPayment)
		payments.POST("/batch", middleware.RequireAuth(), h.BatchPayment)
		payments.GET("", middleware.RequireAuth(), h.ListPayments)
	}

	// Bill-scoped payment history
	bills := router.Group("/api/bills")
	{
		bills.GET("/:id/payments", middleware.RequireAuth(), h.ListBillPayments)
	}
}

// RecordPayment applies a payment to an approved bill
// @Summary      Record payment
// @Description  Records a payment against an approved bill; settles the bill when the balance reaches zero
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RecordPaymentRequest  true  "Record Payment Payload"
// @Success      201      {object}  response.Response{data=service.RecordPaymentResult}
// @Failure      400      {object}  response.Response
// @Router       /api/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	result, err := h.paymentService.RecordPayment(c.Request.Context(), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// BatchPayment pays a set of bills in full
// @Summary      Batch payment
// @Description  Pays every listed bill in full in a single transaction
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BatchPaymentRequest  true  "Batch Payment Payload"
// @Success      201      {object}  response.Response{data=service.BatchPaymentResult}
// @Failure      400      {object}  response.Response
// @Router       /api/payments/batch [post]
func (h *PaymentHandler) BatchPayment(c *gin.Context) {
	var req service.BatchPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	result, err := h.paymentService.BatchPayment(c.Request.Context(), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListPayments returns a paginated list of all payments
// @Summary      List payments
// @Description  Retrieves a paginated list of payments, newest first, optionally scoped to one bill
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        bill_id  query     string  false  "Filter by bill ID"
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Number of items per page (default 20)"
// @Success      200      {object}  response.Response{data=object}
// @Failure      500      {object}  response.Response
// @Router       /api/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	params := pagination.Parse(c)

	if billID := c.Query("bill_id"); billID != "" {
		payments, err := h.paymentService.ListBillPayments(c.Request.Context(), billID)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
			"payments": payments,
			"total":    len(payments),
		}))
		return
	}

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// ListBillPayments returns the payment history of one bill
// @Summary      List bill payments
// @Description  Retrieves every payment recorded against a bill, oldest first
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  response.Response{data=[]service.PaymentResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/bills/{id}/payments [get]
func (h *PaymentHandler) ListBillPayments(c *gin.Context) {
	payments, err := h.paymentService.ListBillPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payments))
}
