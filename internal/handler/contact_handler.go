package handler

import (
	"net/http"

	"billbook/internal/middleware"
	"billbook/internal/service"
	"billbook/pkg/pagination"
	"billbook/pkg/response"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) RegisterRoutes(router *gin.RouterGroup) {
	contacts := router.Group("/api/contacts")
	{
		contacts.POST("", middleware.RequireAuth(), h.CreateContact)
		contacts.GET("", middleware.RequireAuth(), h.ListContacts)
		contacts.GET("/:id", middleware.RequireAuth(), h.GetContact)
		contacts.PUT("/:id", middleware.RequireAuth(), h.UpdateContact)
		contacts.DELETE("/:id", middleware.RequireAuth(), h.DeleteContact)
	}
}

// CreateContact creates a new contact
// @Summary      Create contact
// @Description  Creates a new supplier or customer contact
// @Tags         contacts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ContactRequest  true  "Create Contact Payload"
// @Success      201      {object}  response.Response{data=service.ContactResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/contacts [post]
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	contact, err := h.contactService.CreateContact(c.Request.Context(), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contact))
}

// ListContacts returns a paginated list of contacts
// @Summary      List contacts
// @Description  Retrieves a paginated list of contacts, optionally filtered by a name search
// @Tags         contacts
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Partial name match"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/contacts [get]
func (h *ContactHandler) ListContacts(c *gin.Context) {
	params := pagination.Parse(c)

	contacts, total, err := h.contactService.ListContacts(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"contacts": contacts,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetContact returns a single contact
// @Summary      Get contact
// @Description  Retrieves a contact by ID
// @Tags         contacts
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Contact ID"
// @Success      200  {object}  response.Response{data=service.ContactResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/contacts/{id} [get]
func (h *ContactHandler) GetContact(c *gin.Context) {
	contact, err := h.contactService.GetContact(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contact))
}

// UpdateContact updates a contact
// @Summary      Update contact
// @Description  Updates a contact's details; bills keep the name captured when they were issued
// @Tags         contacts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Contact ID"
// @Param        payload  body      service.ContactRequest  true  "Update Contact Payload"
// @Success      200      {object}  response.Response{data=service.ContactResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/contacts/{id} [put]
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	contact, err := h.contactService.UpdateContact(c.Request.Context(), c.Param("id"), req, userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contact))
}

// DeleteContact deletes a contact
// @Summary      Delete contact
// @Description  Deletes a contact by ID
// @Tags         contacts
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Contact ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/contacts/{id} [delete]
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	userID, _ := c.Get("userID")
	userIDStr, _ := userID.(string)

	if err := h.contactService.DeleteContact(c.Request.Context(), c.Param("id"), userIDStr); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
