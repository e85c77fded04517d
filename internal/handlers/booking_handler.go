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

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// forceFlag reads the manual-override flag used to book past a conflict
func forceFlag(c *gin.Context) bool {
	return c.Query("force") == "true"
}

// @Summary List Bookings
// @Description Get a paginated list of bookings
// @Tags Bookings
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by guest name or email"
// @Param status query string false "Filter by status"
// @Param property_id query int false "Filter by property"
// @Param tenant_id query int false "Filter by tenant"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /bookings [get]
func (h *BookingHandler) Index(c *gin.Context) {
	query := &repository.BookingQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Status = c.Query("status")
	propertyID, _ := strconv.ParseUint(c.Query("property_id"), 10, 32)
	query.PropertyID = uint(propertyID)
	tenantID, _ := strconv.ParseUint(c.Query("tenant_id"), 10, 32)
	query.TenantID = uint(tenantID)

	bookings, total, err := h.bookingService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, b := range bookings {
		responses = append(responses, b.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"bookings": responses, "pagination": gin.H{"total": total}})
}

// @Summary Get Booking
// @Description Get a booking by ID
// @Tags Bookings
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Success 200 {object} models.BookingResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /bookings/{booking_id} [get]
func (h *BookingHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("booking_id"), 10, 32)
	booking, err := h.bookingService.FindByIDWithDetails(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reserva no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}

// @Summary Create Booking
// @Description Create a booking. When the dates conflict the verdict is returned with 409 and nothing is written; force=true overrides.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param force query bool false "Create despite conflicts (audited override)"
// @Param request body models.Booking true "Booking Data"
// @Success 201 {object} models.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} models.AvailabilityVerdict
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var booking models.Booking
	if err := BindNestedOrFlat(c, "booking", &booking); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if creatorID := middleware.GetUserID(c); creatorID != 0 {
		booking.CreatorID = &creatorID
	}

	verdict, err := h.bookingService.Create(c.Request.Context(), &booking, forceFlag(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if verdict != nil {
		c.JSON(http.StatusConflict, verdict)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking.ToResponse()})
}

// @Summary Update Booking
// @Description Update a booking. Date or property changes re-check availability excluding the booking itself.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Param force query bool false "Apply despite conflicts (audited override)"
// @Param request body models.Booking true "Booking Data"
// @Success 200 {object} models.BookingResponse
// @Failure 409 {object} models.AvailabilityVerdict
// @Security BearerAuth
// @Router /bookings/{booking_id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("booking_id"), 10, 32)
	var booking models.Booking
	if err := BindNestedOrFlat(c, "booking", &booking); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	booking.ID = uint(id)

	verdict, err := h.bookingService.Update(c.Request.Context(), &booking, forceFlag(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if verdict != nil {
		c.JSON(http.StatusConflict, verdict)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}

// @Summary Confirm Booking
// @Description Transition a pending booking to confirmed
// @Tags Bookings
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Success 200 {object} models.BookingResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bookings/{booking_id}/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("booking_id"), 10, 32)
	booking, err := h.bookingService.Confirm(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}

// @Summary Check In
// @Description Register the guest's arrival
// @Tags Bookings
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Success 200 {object} models.BookingResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bookings/{booking_id}/check_in [post]
func (h *BookingHandler) CheckIn(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("booking_id"), 10, 32)
	booking, err := h.bookingService.CheckIn(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}

// @Summary Check Out
// @Description Register the guest's departure
// @Tags Bookings
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Success 200 {object} models.BookingResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bookings/{booking_id}/check_out [post]
func (h *BookingHandler) CheckOut(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("booking_id"), 10, 32)
	booking, err := h.bookingService.CheckOut(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// @Summary Cancel Booking
// @Description Cancel a booking; the dates are released immediately
// @Tags Bookings
// @Accept json
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Param request body CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} models.BookingResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bookings/{booking_id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("booking_id"), 10, 32)
	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	booking, err := h.bookingService.Cancel(c.Request.Context(), uint(id), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}

// @Summary Mark No Show
// @Description Mark a confirmed booking whose guest never arrived
// @Tags Bookings
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Success 200 {object} models.BookingResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bookings/{booking_id}/no_show [post]
func (h *BookingHandler) NoShow(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("booking_id"), 10, 32)
	booking, err := h.bookingService.MarkNoShow(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}

// @Summary Reinstate Booking
// @Description Re-activate a cancelled booking. The dates re-enter the blocking set, so availability is re-checked; conflicts return 409 unless force=true.
// @Tags Bookings
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Param force query bool false "Reinstate despite conflicts (audited override)"
// @Success 200 {object} models.BookingResponse
// @Failure 409 {object} models.AvailabilityVerdict
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bookings/{booking_id}/reinstate [post]
func (h *BookingHandler) Reinstate(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("booking_id"), 10, 32)
	booking, verdict, err := h.bookingService.Reinstate(c.Request.Context(), uint(id), forceFlag(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if verdict != nil {
		c.JSON(http.StatusConflict, verdict)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}

// @Summary Delete Booking
// @Description Permanently delete a booking (Admin)
// @Tags Bookings
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /bookings/{booking_id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("booking_id"), 10, 32)
	if err := h.bookingService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reserva eliminada"})
}

// @Summary Booking Stats
// @Description Booking counts grouped by status
// @Tags Bookings
// @Produce json
// @Success 200 {object} repository.BookingStats
// @Security BearerAuth
// @Router /bookings/stats [get]
func (h *BookingHandler) Stats(c *gin.Context) {
	stats, err := h.bookingService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// @Summary Property Bookings
// @Description List all bookings of one property
// @Tags Bookings
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties/{property_id}/bookings [get]
func (h *BookingHandler) IndexByProperty(c *gin.Context) {
	propertyID, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	bookings, err := h.bookingService.FindByProperty(c.Request.Context(), uint(propertyID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, b := range bookings {
		responses = append(responses, b.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"bookings": responses})
}
