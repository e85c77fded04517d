package handlers

import (
	"net/http"
	"strconv"

	"github.com/Comfie/property-crm-sub000/internal/middleware"
	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/Comfie/property-crm-sub000/internal/services"
	"github.com/Comfie/property-crm-sub000/internal/storage"
	"github.com/gin-gonic/gin"
)

type LeaseHandler struct {
	leaseService *services.LeaseService
	storage      *storage.LocalStorage
}

func NewLeaseHandler(leaseService *services.LeaseService, storage *storage.LocalStorage) *LeaseHandler {
	return &LeaseHandler{leaseService: leaseService, storage: storage}
}

// @Summary List Leases
// @Description Get a paginated list of leases
// @Tags Leases
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param status query string false "Filter by status"
// @Param property_id query int false "Filter by property"
// @Param tenant_id query int false "Filter by tenant"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /leases [get]
func (h *LeaseHandler) Index(c *gin.Context) {
	query := &repository.LeaseQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Status = c.Query("status")
	propertyID, _ := strconv.ParseUint(c.Query("property_id"), 10, 32)
	query.PropertyID = uint(propertyID)
	tenantID, _ := strconv.ParseUint(c.Query("tenant_id"), 10, 32)
	query.TenantID = uint(tenantID)

	leases, total, err := h.leaseService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, l := range leases {
		responses = append(responses, l.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"leases": responses, "pagination": gin.H{"total": total}})
}

// @Summary Get Lease
// @Description Get a lease by ID
// @Tags Leases
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Success 200 {object} models.LeaseResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /leases/{lease_id} [get]
func (h *LeaseHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	lease, err := h.leaseService.FindByIDWithDetails(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato de alquiler no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lease": lease.ToResponse()})
}

// @Summary Create Lease
// @Description Create a lease. Conflicting dates return the verdict with 409 and nothing is written; force=true overrides.
// @Tags Leases
// @Accept json
// @Produce json
// @Param force query bool false "Create despite conflicts (audited override)"
// @Param request body models.Lease true "Lease Data"
// @Success 201 {object} models.LeaseResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} models.AvailabilityVerdict
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /leases [post]
func (h *LeaseHandler) Create(c *gin.Context) {
	var lease models.Lease
	if err := BindNestedOrFlat(c, "lease", &lease); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if creatorID := middleware.GetUserID(c); creatorID != 0 {
		lease.CreatorID = &creatorID
	}

	verdict, err := h.leaseService.Create(c.Request.Context(), &lease, forceFlag(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if verdict != nil {
		c.JSON(http.StatusConflict, verdict)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lease": lease.ToResponse()})
}

// @Summary Update Lease
// @Description Update a lease. Date or property changes re-check availability excluding the lease itself.
// @Tags Leases
// @Accept json
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Param force query bool false "Apply despite conflicts (audited override)"
// @Param request body models.Lease true "Lease Data"
// @Success 200 {object} models.LeaseResponse
// @Failure 409 {object} models.AvailabilityVerdict
// @Security BearerAuth
// @Router /leases/{lease_id} [put]
func (h *LeaseHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	var lease models.Lease
	if err := BindNestedOrFlat(c, "lease", &lease); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lease.ID = uint(id)

	verdict, err := h.leaseService.Update(c.Request.Context(), &lease, forceFlag(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if verdict != nil {
		c.JSON(http.StatusConflict, verdict)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lease": lease.ToResponse()})
}

type TerminateLeaseRequest struct {
	Reason string `json:"reason"`
}

// @Summary Terminate Lease
// @Description Terminate an active lease early; occupancy stops counting at the termination date
// @Tags Leases
// @Accept json
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Param request body TerminateLeaseRequest false "Termination reason"
// @Success 200 {object} models.LeaseResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /leases/{lease_id}/terminate [post]
func (h *LeaseHandler) Terminate(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	var req TerminateLeaseRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	lease, err := h.leaseService.Terminate(c.Request.Context(), uint(id), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lease": lease.ToResponse()})
}

// @Summary Expire Lease
// @Description Mark an active lease past its end date as expired
// @Tags Leases
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Success 200 {object} models.LeaseResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /leases/{lease_id}/expire [post]
func (h *LeaseHandler) Expire(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	lease, err := h.leaseService.Expire(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lease": lease.ToResponse()})
}

// @Summary Upload Lease Document
// @Description Attach the signed contract file to a lease
// @Tags Leases
// @Accept multipart/form-data
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Param document formData file true "Contract document"
// @Success 200 {object} models.LeaseResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /leases/{lease_id}/upload_document [post]
func (h *LeaseHandler) UploadDocument(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)

	existing, err := h.leaseService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato de alquiler no encontrado"})
		return
	}

	file, header, err := c.Request.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo requerido"})
		return
	}
	defer file.Close()

	if c.Request.ContentLength > 0 && c.Request.ContentLength > storage.MaxFileSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo demasiado grande"})
		return
	}

	if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de archivo inválido"})
		return
	}

	path, err := h.storage.Upload(file, header, "leases")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al guardar archivo"})
		return
	}

	lease, err := h.leaseService.AttachDocument(c.Request.Context(), uint(id), path)
	if err != nil {
		respondError(c, err)
		return
	}

	// Replaced documents do not pile up on disk
	if existing.DocumentPath != nil && *existing.DocumentPath != path {
		_ = h.storage.Delete(*existing.DocumentPath)
	}

	c.JSON(http.StatusOK, gin.H{"lease": lease.ToResponse()})
}

// @Summary Download Lease Document
// @Description Download the signed contract file of a lease
// @Tags Leases
// @Produce application/octet-stream
// @Param lease_id path int true "Lease ID"
// @Success 200 {file} file "document"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /leases/{lease_id}/download_document [get]
func (h *LeaseHandler) DownloadDocument(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	lease, err := h.leaseService.FindByID(c.Request.Context(), uint(id))
	if err != nil || lease.DocumentPath == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documento no encontrado"})
		return
	}

	fullPath, err := h.storage.SafeFullPath(*lease.DocumentPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documento no encontrado"})
		return
	}

	c.File(fullPath)
}

// @Summary Delete Lease
// @Description Permanently delete a lease (Admin)
// @Tags Leases
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /leases/{lease_id} [delete]
func (h *LeaseHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	if err := h.leaseService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contrato de alquiler eliminado"})
}

// @Summary Property Leases
// @Description List all leases of one property
// @Tags Leases
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties/{property_id}/leases [get]
func (h *LeaseHandler) IndexByProperty(c *gin.Context) {
	propertyID, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	leases, err := h.leaseService.FindByProperty(c.Request.Context(), uint(propertyID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, l := range leases {
		responses = append(responses, l.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"leases": responses})
}

// @Summary Tenant Leases
// @Description List all leases of one tenant
// @Tags Leases
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tenants/{tenant_id}/leases [get]
func (h *LeaseHandler) IndexByTenant(c *gin.Context) {
	tenantID, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	leases, err := h.leaseService.FindByTenant(c.Request.Context(), uint(tenantID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, l := range leases {
		responses = append(responses, l.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"leases": responses})
}
