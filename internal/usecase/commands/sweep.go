package commands

import (
	"context"
	"log/slog"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/pkg/config"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/authz"

	"github.com/google/uuid"
)

// AutoCancelNote is appended to every booking the sweep cancels.
const AutoCancelNote = "auto-cancelled: unpaid at departure-day cutoff"

type SweepError struct {
	BookingID uuid.UUID `json:"booking_id"`
	Reason    string    `json:"reason"`
}

type SweepResult struct {
	Processed    int          `json:"processed"`
	Cancelled    int          `json:"cancelled"`
	Errors       []SweepError `json:"errors"`
	BeforeCutoff bool         `json:"before_cutoff"`
}

//go:generate mockgen -source=sweep.go -destination=../../../tests/mock/commands/sweep.go -package=commandsmock

type SweepCommands interface {
	Run(ctx context.Context, asOf time.Time) (*SweepResult, error)
}

type sweepCommandsImpl struct {
	bookingRepo BookingRepository
	bookings    BookingCommands
	cutoffHour  int
	location    *time.Location
}

func NewSweepCommands(bookingRepo BookingRepository, bookings BookingCommands, cfg config.SweepConfig) (SweepCommands, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, errs.Wrap(err, "invalid sweep timezone")
	}
	return &sweepCommandsImpl{
		bookingRepo: bookingRepo,
		bookings:    bookings,
		cutoffHour:  cfg.CutoffHour,
		location:    loc,
	}, nil
}

// Run cancels every booking still pending and unpaid on its own departure
// day, once the local time has passed the cutoff. Before the cutoff the run
// is a declared no-op so that re-invocation earlier in the day never races
// still-valid bookings. Each candidate is processed independently: a failure
// is recorded and the batch continues. Because cancellation goes through the
// coordinator's compare-and-set path, a candidate already cancelled by a
// concurrent actor degrades to a harmless rejection, swallowed here and
// nowhere else.
func (s *sweepCommandsImpl) Run(ctx context.Context, asOf time.Time) (*SweepResult, error) {
	result := &SweepResult{Errors: []SweepError{}}

	if asOf.In(s.location).Hour() < s.cutoffHour {
		result.BeforeCutoff = true
		return result, nil
	}

	candidates, err := s.bookingRepo.FindExpiryCandidates(ctx, asOf, s.location)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}

	for _, b := range candidates {
		result.Processed++

		if err := s.cancel(ctx, b); err != nil {
			if errs.Is(err, errs.ErrIllegalTransition) || errs.Is(err, errs.ErrConflict) {
				// Lost the race to another transition; the booking is no
				// longer ours to expire.
				continue
			}
			slog.Warn("expiry sweep: cancellation failed",
				"booking_id", b.ID(), "booking_number", b.Number(), "error", err)
			result.Errors = append(result.Errors, SweepError{BookingID: b.ID(), Reason: err.Error()})
			continue
		}
		result.Cancelled++
	}

	return result, nil
}

func (s *sweepCommandsImpl) cancel(ctx context.Context, b *booking.Booking) error {
	system := authz.System()

	if _, err := s.bookings.RequestTransition(ctx, system, b.ID(), authz.AxisStatus, booking.StatusCancelled.String()); err != nil {
		return err
	}

	// Annotation is best-effort audit trail; the cancellation stands even if
	// the note write fails.
	if _, err := s.bookings.AppendNote(ctx, system, b.ID(), AutoCancelNote); err != nil {
		slog.Warn("expiry sweep: note append failed", "booking_id", b.ID(), "error", err)
	}
	return nil
}
