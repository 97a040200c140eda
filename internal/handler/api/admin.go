package api

import (
	"net/http"

	reqdto "tourbook/internal/handler/dto/request"
	resdto "tourbook/internal/handler/dto/response"
	"tourbook/internal/handler/httperr"
	"tourbook/internal/handler/middleware"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/usecase/authz"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
	sweepCommands   commands.SweepCommands
	clock           clock.Clock
}

func NewAdminHandler(
	bookingCommands commands.BookingCommands,
	bookingQueries queries.BookingQueries,
	sweepCommands commands.SweepCommands,
	clock clock.Clock,
) *AdminHandler {
	return &AdminHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
		sweepCommands:   sweepCommands,
		clock:           clock,
	}
}

// @Summary Append booking note
// @Description Append a narrative line to a booking; allowed even on completed or cancelled bookings
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.AppendNoteRequest true "Note"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/bookings/{id}/notes [patch]
func (h *AdminHandler) AppendNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	var req reqdto.AppendNoteRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	updated, err := h.bookingCommands.AppendNote(c.Request.Context(), middleware.GetActor(c), id, req.Note)
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

// @Summary Run expiry sweep
// @Description Cancel same-day bookings still unpaid past the cutoff; safe to re-run
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.SweepRequest false "Optional as-of override"
// @Success 200 {object} resdto.SweepResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/bookings/sweep [post]
func (h *AdminHandler) RunSweep(c *gin.Context) {
	var req reqdto.SweepRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
			return
		}
	}

	asOf := h.clock.Now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	result, err := h.sweepCommands.Run(c.Request.Context(), asOf)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSweepResult(result))
}
