package handler

import (
	"net/http"

	"billbook/internal/middleware"
	"billbook/internal/service"
	"billbook/pkg/pagination"
	"billbook/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderHandler struct {
	poService service.PurchaseOrderService
}

func NewPurchaseOrderHandler(poService service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService}
}

func (h *PurchaseOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	pos := router.Group("/api/purchase-orders")
	{
		pos.POST("", middleware.RequireAuth(), h.CreatePurchaseOrder)
		pos.GET("", middleware.RequireAuth(), h.ListPurchaseOrders)
		pos.GET("/:id", middleware.RequireAuth(), h.GetPurchaseOrder)
		pos.PUT("/:id", middleware.RequireAuth(), h.UpdatePurchaseOrder)
		pos.PUT("/:id/status", middleware.RequireAuth(), h.ChangeStatus)
		pos.PUT("/:id/approve", middleware.RequireAuth(), h.ApprovePurchaseOrder)
		pos.PUT("/:id/revert", middleware.RequireAuth(), h.RevertPurchaseOrder)
		pos.POST("/:id/convert-to-bill", middleware.RequireAuth(), h.ConvertToBill)
	}
}

// CreatePurchaseOrder creates a new draft purchase order
// @Summary      Create purchase order
// @Description  Creates a new purchase order in draft status with its line items
// @Tags         purchase-orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePurchaseOrderRequest  true  "Create Purchase Order Payload"
// @Success      201      {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	var req service.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	po, err := h.poService.CreatePurchaseOrder(c.Request.Context(), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, po))
}

// ListPurchaseOrders returns a paginated list of purchase orders
// @Summary      List purchase orders
// @Description  Retrieves a paginated list of purchase orders, optionally filtered by status
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (draft, submitted, approved, billed, closed)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) ListPurchaseOrders(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.PurchaseOrderFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	pos, total, err := h.poService.ListPurchaseOrders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"purchase_orders": pos,
		"total":           total,
		"page":            params.Page,
		"limit":           params.Limit,
	}))
}

// GetPurchaseOrder returns a single purchase order with its line items
// @Summary      Get purchase order
// @Description  Retrieves a purchase order by ID including line items
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase Order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	po, err := h.poService.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// UpdatePurchaseOrder replaces a draft purchase order's content
// @Summary      Update purchase order
// @Description  Updates a draft purchase order; orders that have left draft reject edits
// @Tags         purchase-orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                              true  "Purchase Order ID"
// @Param        payload  body      service.UpdatePurchaseOrderRequest  true  "Update Purchase Order Payload"
// @Success      200      {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) UpdatePurchaseOrder(c *gin.Context) {
	var req service.UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	po, err := h.poService.UpdatePurchaseOrder(c.Request.Context(), c.Param("id"), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// ChangeStatus moves a purchase order through its lifecycle
// @Summary      Change purchase order status
// @Description  Applies a status transition; invalid transitions are rejected
// @Tags         purchase-orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Purchase Order ID"
// @Param        payload  body      service.ChangePOStatusRequest  true  "Target Status"
// @Success      200      {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/purchase-orders/{id}/status [put]
func (h *PurchaseOrderHandler) ChangeStatus(c *gin.Context) {
	var req service.ChangePOStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	po, err := h.poService.ChangeStatus(c.Request.Context(), c.Param("id"), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// ApprovePurchaseOrder approves a submitted purchase order
// @Summary      Approve purchase order
// @Description  Moves a submitted purchase order to approved
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase Order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/purchase-orders/{id}/approve [put]
func (h *PurchaseOrderHandler) ApprovePurchaseOrder(c *gin.Context) {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	po, err := h.poService.ApprovePurchaseOrder(c.Request.Context(), c.Param("id"), userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// RevertPurchaseOrder sends a submitted purchase order back to draft
// @Summary      Revert purchase order
// @Description  Moves a submitted purchase order back to draft for further edits
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase Order ID"
// @Success      200  {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/purchase-orders/{id}/revert [put]
func (h *PurchaseOrderHandler) RevertPurchaseOrder(c *gin.Context) {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	po, err := h.poService.RevertPurchaseOrder(c.Request.Context(), c.Param("id"), userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, po))
}

// ConvertToBill creates a draft bill from an approved purchase order
// @Summary      Convert purchase order to bill
// @Description  Creates a draft bill from an approved purchase order and marks the order billed
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase Order ID"
// @Success      201  {object}  response.Response{data=service.BillResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/purchase-orders/{id}/convert-to-bill [post]
func (h *PurchaseOrderHandler) ConvertToBill(c *gin.Context) {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	bill, err := h.poService.ConvertToBill(c.Request.Context(), c.Param("id"), userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bill))
}
