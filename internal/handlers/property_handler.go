package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Comfie/property-crm-sub000/internal/middleware"
	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/Comfie/property-crm-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	propertyService *services.PropertyService
}

func NewPropertyHandler(propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// @Summary List Properties
// @Description Get a paginated list of properties
// @Tags Properties
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name, address, city or guid"
// @Param guid query string false "Exact guid lookup, returns a single-element page"
// @Param status query string false "Filter by status"
// @Param rental_type query string false "Filter by rental type (short_term, long_term, both)"
// @Param property_type query string false "Filter by property type"
// @Param city query string false "Filter by city"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties [get]
func (h *PropertyHandler) Index(c *gin.Context) {
	// Dashboard deep links reference properties by guid, not numeric id
	if guid := c.Query("guid"); guid != "" {
		property, err := h.propertyService.FindByGUID(c.Request.Context(), guid)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"properties": []interface{}{}, "pagination": gin.H{"total": 0}})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"properties": []interface{}{property.ToResponse()},
			"pagination": gin.H{"total": 1},
		})
		return
	}

	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["status"] = c.Query("status")
	query.Filters["rental_type"] = c.Query("rental_type")
	query.Filters["property_type"] = c.Query("property_type")
	query.Filters["city"] = c.Query("city")

	properties, total, err := h.propertyService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, p := range properties {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"properties": responses, "pagination": gin.H{"total": total}})
}

// @Summary Get Property
// @Description Get a property by ID
// @Tags Properties
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} models.PropertyResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /properties/{property_id} [get]
func (h *PropertyHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	property, err := h.propertyService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Propiedad no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property.ToResponse()})
}

// @Summary Create Property
// @Description Create a new property listing
// @Tags Properties
// @Accept json
// @Produce json
// @Param request body models.Property true "Property Data"
// @Success 201 {object} models.PropertyResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /properties [post]
func (h *PropertyHandler) Create(c *gin.Context) {
	var property models.Property
	if err := BindNestedOrFlat(c, "property", &property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.propertyService.Create(c.Request.Context(), &property, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"property": property.ToResponse()})
}

// @Summary Update Property
// @Description Update an existing property
// @Tags Properties
// @Accept json
// @Produce json
// @Param property_id path int true "Property ID"
// @Param request body models.Property true "Property Data"
// @Success 200 {object} models.PropertyResponse
// @Security BearerAuth
// @Router /properties/{property_id} [put]
func (h *PropertyHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	var property models.Property
	if err := BindNestedOrFlat(c, "property", &property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	property.ID = uint(id)

	if err := h.propertyService.Update(c.Request.Context(), &property, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": property.ToResponse()})
}

// @Summary Upload Property Photo
// @Description Upload the listing photo; a 400x300 thumbnail is generated
// @Tags Properties
// @Accept multipart/form-data
// @Produce json
// @Param property_id path int true "Property ID"
// @Param photo formData file true "Photo file (jpg or png)"
// @Success 200 {object} models.PropertyResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /properties/{property_id}/upload_photo [post]
func (h *PropertyHandler) UploadPhoto(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo requerido"})
		return
	}
	defer file.Close()

	property, err := h.propertyService.UploadPhoto(c.Request.Context(), uint(id), file, header, middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Propiedad no encontrada"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": property.ToResponse()})
}

// @Summary Delete Property
// @Description Delete a property without reservation history (Admin)
// @Tags Properties
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /properties/{property_id} [delete]
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	if err := h.propertyService.Delete(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Propiedad no encontrada"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Propiedad eliminada"})
}
