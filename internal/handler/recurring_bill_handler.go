package handler

import (
	"net/http"

	"billbook/internal/middleware"
	"billbook/internal/service"
	"billbook/pkg/pagination"
	"billbook/pkg/response"

	"github.com/gin-gonic/gin"
)

type RecurringBillHandler struct {
	recurringService service.RecurringBillService
}

func NewRecurringBillHandler(recurringService service.RecurringBillService) *RecurringBillHandler {
	return &RecurringBillHandler{recurringService: recurringService}
}

func (h *RecurringBillHandler) RegisterRoutes(router *gin.RouterGroup) {
	recurring := router.Group("/api/recurring-bills")
	{
		recurring.POST("", middleware.RequireAuth(), h.CreateRecurringBill)
		recurring.GET("", middleware.RequireAuth(), h.ListRecurringBills)
		recurring.POST("/generate-due", middleware.RequireAuth(), h.GenerateDue)
		recurring.GET("/:id", middleware.RequireAuth(), h.GetRecurringBill)
		recurring.PUT("/:id", middleware.RequireAuth(), h.UpdateRecurringBill)
		recurring.DELETE("/:id", middleware.RequireAuth(), h.DeleteRecurringBill)
		recurring.POST("/:id/generate", middleware.RequireAuth(), h.Generate)
	}
}

// CreateRecurringBill creates a new recurring bill template
// @Summary      Create recurring bill
// @Description  Creates an active recurring bill template
// @Tags         recurring-bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRecurringBillRequest  true  "Create Recurring Bill Payload"
// @Success      201      {object}  response.Response{data=service.RecurringBillResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/recurring-bills [post]
func (h *RecurringBillHandler) CreateRecurringBill(c *gin.Context) {
	var req service.CreateRecurringBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	template, err := h.recurringService.CreateRecurringBill(c.Request.Context(), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, template))
}

// ListRecurringBills returns a paginated list of recurring bill templates
// @Summary      List recurring bills
// @Description  Retrieves a paginated list of recurring bill templates, optionally filtered by status
// @Tags         recurring-bills
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (active, paused, completed)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/recurring-bills [get]
func (h *RecurringBillHandler) ListRecurringBills(c *gin.Context) {
	params := pagination.Parse(c)

	templates, total, err := h.recurringService.ListRecurringBills(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"recurring_bills": templates,
		"total":           total,
		"page":            params.Page,
		"limit":           params.Limit,
	}))
}

// GetRecurringBill returns a single recurring bill template
// @Summary      Get recurring bill
// @Description  Retrieves a recurring bill template by ID
// @Tags         recurring-bills
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Recurring Bill ID"
// @Success      200  {object}  response.Response{data=service.RecurringBillResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/recurring-bills/{id} [get]
func (h *RecurringBillHandler) GetRecurringBill(c *gin.Context) {
	template, err := h.recurringService.GetRecurringBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, template))
}

// UpdateRecurringBill updates a recurring bill template
// @Summary      Update recurring bill
// @Description  Updates a recurring bill template, including pausing or resuming it
// @Tags         recurring-bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                              true  "Recurring Bill ID"
// @Param        payload  body      service.UpdateRecurringBillRequest  true  "Update Recurring Bill Payload"
// @Success      200      {object}  response.Response{data=service.RecurringBillResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/recurring-bills/{id} [put]
func (h *RecurringBillHandler) UpdateRecurringBill(c *gin.Context) {
	var req service.UpdateRecurringBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	template, err := h.recurringService.UpdateRecurringBill(c.Request.Context(), c.Param("id"), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, template))
}

// DeleteRecurringBill deletes a recurring bill template
// @Summary      Delete recurring bill
// @Description  Deletes a recurring bill template; bills already generated from it are untouched
// @Tags         recurring-bills
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Recurring Bill ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/recurring-bills/{id} [delete]
func (h *RecurringBillHandler) DeleteRecurringBill(c *gin.Context) {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	if err := h.recurringService.DeleteRecurringBill(c.Request.Context(), c.Param("id"), userIDStr); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// Generate creates the next bill from a recurring template
// @Summary      Generate bill from template
// @Description  Creates the next draft bill from an active template and advances its next date
// @Tags         recurring-bills
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Recurring Bill ID"
// @Success      201  {object}  response.Response{data=service.BillResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/recurring-bills/{id}/generate [post]
func (h *RecurringBillHandler) Generate(c *gin.Context) {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	bill, err := h.recurringService.Generate(c.Request.Context(), c.Param("id"), userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bill))
}

// GenerateDue generates bills for every template that is due
// @Summary      Generate all due bills
// @Description  Creates draft bills for every active template whose next date is today or earlier
// @Tags         recurring-bills
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.GenerateDueResult}
// @Failure      500  {object}  response.Response
// @Router       /api/recurring-bills/generate-due [post]
func (h *RecurringBillHandler) GenerateDue(c *gin.Context) {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	result, err := h.recurringService.GenerateDue(c.Request.Context(), userIDStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
