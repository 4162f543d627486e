package handler

import (
	"net/http"
	"time"

	"billbook/internal/middleware"
	"billbook/internal/service"
	"billbook/pkg/pagination"
	"billbook/pkg/response"

	"github.com/gin-gonic/gin"
)

type BillHandler struct {
	billService service.BillService
}

func NewBillHandler(billService service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

func (h *BillHandler) RegisterRoutes(router *gin.RouterGroup) {
	bills := router.Group("/api/bills")
	{
		bills.POST("", middleware.RequireAuth(), h.CreateBill)
		bills.GET("", middleware.RequireAuth(), h.ListBills)
		bills.GET("/due", middleware.RequireAuth(), h.GetBillsDue)
		bills.GET("/:id", middleware.RequireAuth(), h.GetBill)
		bills.PUT("/:id", middleware.RequireAuth(), h.UpdateBill)
		bills.PUT("/:id/status", middleware.RequireAuth(), h.ChangeStatus)
		bills.POST("/:id/copy", middleware.RequireAuth(), h.CopyBill)
	}
}

// CreateBill creates a new draft bill
// @Summary      Create bill
// @Description  Creates a new bill in draft status with its line items
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateBillRequest  true  "Create Bill Payload"
// @Success      201      {object}  response.Response{data=service.BillResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/bills [post]
func (h *BillHandler) CreateBill(c *gin.Context) {
	var req service.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	bill, err := h.billService.CreateBill(c.Request.Context(), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bill))
}

// ListBills returns a paginated list of bills
// @Summary      List bills
// @Description  Retrieves a paginated list of bills, optionally filtered by status or bill number
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (draft, submitted, approved, paid, voided)"
// @Param        number  query     string  false  "Partial bill number match"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/bills [get]
func (h *BillHandler) ListBills(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.BillFilter{
		Status:     c.Query("status"),
		BillNumber: c.Query("number"),
		Page:       params.Page,
		Limit:      params.Limit,
	}

	bills, total, err := h.billService.ListBills(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"bills": bills,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// GetBillsDue returns unpaid bills grouped by due window
// @Summary      Bills due
// @Description  Returns unpaid bills grouped into overdue, today, this week, and this month buckets
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.BillsDueResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/bills/due [get]
func (h *BillHandler) GetBillsDue(c *gin.Context) {
	due, err := h.billService.GetBillsDue(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, due))
}

// GetBill returns a single bill with its line items
// @Summary      Get bill
// @Description  Retrieves a bill by ID including line items
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  response.Response{data=service.BillResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/bills/{id} [get]
func (h *BillHandler) GetBill(c *gin.Context) {
	bill, err := h.billService.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, bill))
}

// UpdateBill replaces a draft bill's content
// @Summary      Update bill
// @Description  Updates a draft bill; bills that have left draft reject edits
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Bill ID"
// @Param        payload  body      service.UpdateBillRequest  true  "Update Bill Payload"
// @Success      200      {object}  response.Response{data=service.BillResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/bills/{id} [put]
func (h *BillHandler) UpdateBill(c *gin.Context) {
	var req service.UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	bill, err := h.billService.UpdateBill(c.Request.Context(), c.Param("id"), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, bill))
}

// ChangeStatus moves a bill through its lifecycle
// @Summary      Change bill status
// @Description  Applies a status transition (submit, approve, revert, void); invalid transitions are rejected
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Bill ID"
// @Param        payload  body      service.ChangeBillStatusRequest  true  "Target Status"
// @Success      200      {object}  response.Response{data=service.BillResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/bills/{id}/status [put]
func (h *BillHandler) ChangeStatus(c *gin.Context) {
	var req service.ChangeBillStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	bill, err := h.billService.ChangeStatus(c.Request.Context(), c.Param("id"), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, bill))
}

// CopyBill duplicates a bill as a new draft
// @Summary      Copy bill
// @Description  Creates a new draft bill with the same contact and line items under a fresh number
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      201  {object}  response.Response{data=service.BillResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/bills/{id}/copy [post]
func (h *BillHandler) CopyBill(c *gin.Context) {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	bill, err := h.billService.CopyBill(c.Request.Context(), c.Param("id"), userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bill))
}
