package handlers

import (
	"net/http"
	"strconv"

	"github.com/Comfie/property-crm-sub000/internal/middleware"
	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/Comfie/property-crm-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// @Summary List Tenants
// @Description Get a paginated list of tenants
// @Tags Tenants
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name, email or identity"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tenants [get]
func (h *TenantHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")

	tenants, total, err := h.tenantService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, t := range tenants {
		responses = append(responses, t.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"tenants": responses, "pagination": gin.H{"total": total}})
}

// @Summary Get Tenant
// @Description Get a tenant by ID
// @Tags Tenants
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Success 200 {object} models.TenantResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /tenants/{tenant_id} [get]
func (h *TenantHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	tenant, err := h.tenantService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inquilino no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant": tenant.ToResponse()})
}

// @Summary Create Tenant
// @Description Register a new tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Param request body models.Tenant true "Tenant Data"
// @Success 201 {object} models.TenantResponse
// @Security BearerAuth
// @Router /tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var tenant models.Tenant
	if err := BindNestedOrFlat(c, "tenant", &tenant); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tenantService.Create(c.Request.Context(), &tenant, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tenant": tenant.ToResponse()})
}

// @Summary Update Tenant
// @Description Update an existing tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Param request body models.Tenant true "Tenant Data"
// @Success 200 {object} models.TenantResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id} [put]
func (h *TenantHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	var tenant models.Tenant
	if err := BindNestedOrFlat(c, "tenant", &tenant); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tenant.ID = uint(id)

	if err := h.tenantService.Update(c.Request.Context(), &tenant, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenant": tenant.ToResponse()})
}

// @Summary Delete Tenant
// @Description Soft delete a tenant
// @Tags Tenants
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /tenants/{tenant_id} [delete]
func (h *TenantHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	if err := h.tenantService.SoftDelete(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inquilino eliminado"})
}

// @Summary Restore Tenant
// @Description Restore a soft-deleted tenant
// @Tags Tenants
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /tenants/{tenant_id}/restore [post]
func (h *TenantHandler) Restore(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	if err := h.tenantService.Restore(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inquilino restaurado"})
}

type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// @Summary List Maintenance Requests
// @Description Get a paginated list of maintenance requests
// @Tags Maintenance
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by title or property name"
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param property_id query int false "Filter by property"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /maintenance [get]
func (h *MaintenanceHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["status"] = c.Query("status")
	query.Filters["priority"] = c.Query("priority")
	query.Filters["property_id"] = c.Query("property_id")

	requests, total, err := h.maintenanceService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, r := range requests {
		responses = append(responses, r.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"maintenance_requests": responses, "pagination": gin.H{"total": total}})
}

// @Summary Get Maintenance Request
// @Description Get a maintenance request by ID
// @Tags Maintenance
// @Produce json
// @Param request_id path int true "Request ID"
// @Success 200 {object} models.MaintenanceResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /maintenance/{request_id} [get]
func (h *MaintenanceHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("request_id"), 10, 32)
	request, err := h.maintenanceService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Solicitud de mantenimiento no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance_request": request.ToResponse()})
}

// @Summary Create Maintenance Request
// @Description Report a maintenance issue for a property
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param request body models.MaintenanceRequest true "Request Data"
// @Success 201 {object} models.MaintenanceResponse
// @Security BearerAuth
// @Router /maintenance [post]
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var request models.MaintenanceRequest
	if err := BindNestedOrFlat(c, "maintenance_request", &request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if reporterID := middleware.GetUserID(c); reporterID != 0 && request.ReporterID == nil {
		request.ReporterID = &reporterID
	}

	if err := h.maintenanceService.Create(c.Request.Context(), &request); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"maintenance_request": request.ToResponse()})
}

// @Summary Update Maintenance Request
// @Description Update a maintenance request; status changes go through the start/resolve/close routes
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param request_id path int true "Request ID"
// @Param request body models.MaintenanceRequest true "Request Data"
// @Success 200 {object} models.MaintenanceResponse
// @Security BearerAuth
// @Router /maintenance/{request_id} [put]
func (h *MaintenanceHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("request_id"), 10, 32)
	var request models.MaintenanceRequest
	if err := BindNestedOrFlat(c, "maintenance_request", &request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	request.ID = uint(id)

	if err := h.maintenanceService.Update(c.Request.Context(), &request, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"maintenance_request": request.ToResponse()})
}

type StartMaintenanceRequest struct {
	AssigneeID *uint `json:"assignee_id"`
}

// @Summary Start Maintenance
// @Description Move an open request to in_progress, optionally assigning a user
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param request_id path int true "Request ID"
// @Param request body StartMaintenanceRequest false "Assignee"
// @Success 200 {object} models.MaintenanceResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /maintenance/{request_id}/start [post]
func (h *MaintenanceHandler) Start(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("request_id"), 10, 32)
	var req StartMaintenanceRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	request, err := h.maintenanceService.Start(c.Request.Context(), uint(id), req.AssigneeID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance_request": request.ToResponse()})
}

type ResolveMaintenanceRequest struct {
	Cost float64 `json:"cost"`
}

// @Summary Resolve Maintenance
// @Description Mark an in-progress request as resolved, recording the cost
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param request_id path int true "Request ID"
// @Param request body ResolveMaintenanceRequest false "Final cost"
// @Success 200 {object} models.MaintenanceResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /maintenance/{request_id}/resolve [post]
func (h *MaintenanceHandler) Resolve(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("request_id"), 10, 32)
	var req ResolveMaintenanceRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	request, err := h.maintenanceService.Resolve(c.Request.Context(), uint(id), req.Cost, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance_request": request.ToResponse()})
}

// @Summary Close Maintenance
// @Description Close a resolved request
// @Tags Maintenance
// @Produce json
// @Param request_id path int true "Request ID"
// @Success 200 {object} models.MaintenanceResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /maintenance/{request_id}/close [post]
func (h *MaintenanceHandler) Close(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("request_id"), 10, 32)
	request, err := h.maintenanceService.Close(c.Request.Context(), uint(id), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance_request": request.ToResponse()})
}

// @Summary Delete Maintenance Request
// @Description Delete a maintenance request (Admin)
// @Tags Maintenance
// @Produce json
// @Param request_id path int true "Request ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /maintenance/{request_id} [delete]
func (h *MaintenanceHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("request_id"), 10, 32)
	if err := h.maintenanceService.Delete(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Solicitud de mantenimiento eliminada"})
}

// @Summary Property Maintenance Requests
// @Description List all maintenance requests of one property
// @Tags Maintenance
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties/{property_id}/maintenance [get]
func (h *MaintenanceHandler) IndexByProperty(c *gin.Context) {
	propertyID, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	requests, err := h.maintenanceService.FindByProperty(c.Request.Context(), uint(propertyID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	openCount, err := h.maintenanceService.CountOpenByProperty(c.Request.Context(), uint(propertyID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, r := range requests {
		responses = append(responses, r.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"maintenance_requests": responses, "open_count": openCount})
}

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// @Summary Tenant Messages
// @Description Get the message history of a tenant
// @Tags Messages
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tenants/{tenant_id}/messages [get]
func (h *MessageHandler) Index(c *gin.Context) {
	tenantID, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	messages, total, err := h.messageService.FindByTenant(c.Request.Context(), uint(tenantID), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for _, m := range messages {
		responses = append(responses, m.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"messages": responses, "pagination": gin.H{"total": total}})
}

type SendMessageRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// @Summary Send Message
// @Description Record a message sent to a tenant; delivery happens outside the system
// @Tags Messages
// @Accept json
// @Produce json
// @Param tenant_id path int true "Tenant ID"
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} models.MessageResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	tenantID, _ := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Asunto y cuerpo son requeridos"})
		return
	}

	message := &models.Message{
		TenantID: uint(tenantID),
		SenderID: middleware.GetUserID(c),
		Subject:  req.Subject,
		Body:     req.Body,
	}

	if err := h.messageService.Send(c.Request.Context(), message); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message.ToResponse()})
}

// @Summary Delete Message
// @Description Delete a message from the tenant's file
// @Tags Messages
// @Produce json
// @Param message_id path int true "Message ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /messages/{message_id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("message_id"), 10, 32)
	if err := h.messageService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mensaje eliminado"})
}

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// @Summary List Notifications
// @Description Get a paginated list of notifications for the current user
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by read state" Enums(read, unread)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) Index(c *gin.Context) {
	userID := middleware.GetUserID(c)
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")

	notifications, total, err := h.notificationService.FindByUser(c.Request.Context(), userID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	unread, err := h.notificationService.CountUnread(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, n := range notifications {
		responses = append(responses, n.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"notifications": responses, "unread_count": unread, "pagination": gin.H{"total": total}})
}

// @Summary Get Notification
// @Description Get a notification by ID
// @Tags Notifications
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} models.NotificationResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id} [get]
func (h *NotificationHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	notification, err := h.notificationService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notificación no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": notification.ToResponse()})
}

// @Summary Mark Notification Read
// @Description Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id}/mark_as_read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.MarkAsRead(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificación marcada como leída"})
}

// @Summary Delete Notification
// @Description Delete a notification
// @Tags Notifications
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.Delete(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificación eliminada"})
}

// @Summary Mark All Notifications Read
// @Description Mark all notifications as read for current user
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/mark_all_as_read [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todas las notificaciones marcadas como leídas"})
}

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get a paginated list of system audit logs
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	offset := (page - 1) * perPage

	logs, total, err := h.auditService.List(c.Request.Context(), perPage, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": logs, "pagination": gin.H{"total": total, "page": page, "per_page": perPage}})
}
