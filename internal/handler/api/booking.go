package api

import (
	"net/http"

	reqdto "tourbook/internal/handler/dto/request"
	resdto "tourbook/internal/handler/dto/response"
	"tourbook/internal/handler/httperr"
	"tourbook/internal/handler/middleware"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/authz"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
}

func NewBookingHandler(bookingCommands commands.BookingCommands, bookingQueries queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
	}
}

// @Summary Create booking
// @Description Create a new tour booking; guests may book without an account
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	// Guest checkout leaves the owner unset.
	var userID *uuid.UUID
	if id, ok := middleware.GetUserID(c); ok {
		userID = &id
	}

	params, err := req.ToParams(userID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date format", nil)
		return
	}

	created, err := h.bookingCommands.Create(c.Request.Context(), params)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrDestinationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Destination not found", nil)
		case errs.Is(err, errs.ErrInvalidQuantity):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Participants must be at least 1", nil)
		case errs.Is(err, errs.ErrDuplicateBookingNumber):
			httperr.AbortWithError(c, http.StatusConflict, err, "Could not allocate a booking number, please retry", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	// Read-after-write so the response carries the joined destination name.
	view, err := h.bookingQueries.GetByID(c.Request.Context(), authz.System(), created.ID())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromBookingView(view))
}

// @Summary Get booking
// @Description Get booking by ID
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List bookings
// @Description List bookings; admins see all with filters, customers their own
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param search query string false "Search booking number or customer name"
// @Param owner_id query string false "Filter by owner (admin only)"
// @Success 200 {array} resdto.BookingListResponse
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor := middleware.GetActor(c)

	filter := queries.BookingFilter{
		Search: c.Query("search"),
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if ownerStr := c.Query("owner_id"); ownerStr != "" && actor.IsAdmin() {
		ownerID, err := uuid.Parse(ownerStr)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid owner ID format", nil)
			return
		}
		filter.OwnerID = &ownerID
	}

	items, err := h.bookingQueries.List(c.Request.Context(), actor, filter)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	response := make([]*resdto.BookingListResponse, len(items))
	for i, item := range items {
		response[i] = resdto.FromBookingListItem(item)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Request lifecycle transition
// @Description Move the booking's status or payment_status along the state machine
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body reqdto.TransitionRequest true "Transition request"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]any
// @Router /bookings/{id}/transition [patch]
func (h *BookingHandler) RequestTransition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	var req reqdto.TransitionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	axis, ok := authz.ParseAxis(req.Field)
	if !ok {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.Newf("unknown transition field %q", req.Field), "Unknown transition field", nil)
		return
	}

	updated, err := h.bookingCommands.RequestTransition(c.Request.Context(), middleware.GetActor(c), id, axis, req.Value)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), authz.System(), updated.ID())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Payment callback
// @Description Simulated payment-provider confirmation; flips unpaid to paid and records the provider reference
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body reqdto.PaymentCallbackRequest true "Payment details"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]any
// @Router /bookings/{id}/payment/callback [post]
func (h *BookingHandler) PaymentCallback(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	var req reqdto.PaymentCallbackRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	updated, err := h.bookingCommands.RecordPayment(c.Request.Context(), middleware.GetActor(c), id, req.PaymentID, req.PaymentMethod)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), authz.System(), updated.ID())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// respondLifecycleError maps lifecycle failures onto HTTP. IllegalTransition
// carries the stored vs requested state so admins can diagnose; Conflict
// tells the caller a re-read and retry can succeed, IllegalTransition that
// it cannot.
func respondLifecycleError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, errs.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errs.Is(err, errs.ErrForbidden):
		httperr.AbortWithError(c, http.StatusForbidden, err, "You cannot perform that action", nil)
	case errs.Is(err, errs.ErrIllegalTransition):
		var tErr *commands.TransitionError
		if errs.As(err, &tErr) {
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Illegal transition", gin.H{
				"field":     string(tErr.Axis),
				"current":   tErr.From,
				"requested": tErr.To,
				"reason":    tErr.Reason,
			})
			return
		}
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Illegal transition", nil)
	case errs.Is(err, errs.ErrConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking changed concurrently, refresh and retry", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
