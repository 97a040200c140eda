package repository

import (
	"context"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/infra"
	"tourbook/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const bookingColumns = `
	id, booking_number, destination_id, user_id, start_date, end_date,
	participants, total_price::text, payment_method, payment_id,
	status, payment_status, customer_name, customer_phone, notes,
	created_at, updated_at`

type BookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Insert(ctx context.Context, b *booking.Booking) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (
			id, booking_number, destination_id, user_id, start_date, end_date,
			participants, total_price, payment_method, payment_id,
			status, payment_status, customer_name, customer_phone, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		b.ID(), b.Number(), b.DestinationID(), b.UserID(), b.StartDate(), b.EndDate(),
		b.Participants(), b.TotalPrice().String(), b.PaymentMethod(), b.PaymentID(),
		b.Status().String(), b.PaymentStatus().String(), b.CustomerName(), b.CustomerPhone(), b.Notes(),
		b.CreatedAt(), b.UpdatedAt(),
	)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("booking number already taken", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert booking", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)

	b, err := scanBooking(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return b, nil
}

func (r *BookingRepository) FindExpiryCandidates(ctx context.Context, day time.Time, loc *time.Location) ([]*booking.Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = $1 AND payment_status = $2 AND start_date = $3::date
		ORDER BY created_at`,
		booking.StatusPending.String(), booking.PaymentUnpaid.String(),
		day.In(loc).Format("2006-01-02"),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query expiry candidates", err)
	}
	defer rows.Close()

	var result []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan expiry candidate", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate expiry candidates", err)
	}
	return result, nil
}

// UpdateStatus writes the operational axis conditionally on its current
// value. Zero rows matched means the precondition went stale.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next booking.Status, touchedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`,
		next.String(), touchedAt, id, expected.String(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking status changed concurrently", nil, infra.KindStaleState)
	}
	return nil
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, expected, next booking.PaymentStatus, touchedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings SET payment_status = $1, updated_at = $2
		WHERE id = $3 AND payment_status = $4`,
		next.String(), touchedAt, id, expected.String(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update payment status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment status changed concurrently", nil, infra.KindStaleState)
	}
	return nil
}

// RecordPayment stores the provider reference and flips unpaid -> paid in
// one conditional write.
func (r *BookingRepository) RecordPayment(ctx context.Context, id uuid.UUID, paymentID, paymentMethod string, touchedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET payment_status = $1, payment_id = $2, payment_method = $3, updated_at = $4
		WHERE id = $5 AND payment_status = $6`,
		booking.PaymentPaid.String(), paymentID, paymentMethod, touchedAt,
		id, booking.PaymentUnpaid.String(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to record payment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment already recorded or refunded", nil, infra.KindStaleState)
	}
	return nil
}

func (r *BookingRepository) AppendNote(ctx context.Context, id uuid.UUID, note string, touchedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET notes = CASE WHEN notes = '' THEN $1 ELSE notes || E'\n' || $1 END,
		    updated_at = $2
		WHERE id = $3`,
		note, touchedAt, id,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append note", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id            uuid.UUID
		number        string
		destinationID uuid.UUID
		userID        pgtype.UUID
		startDate     time.Time
		endDate       pgtype.Date
		participants  int
		totalPrice    string
		paymentMethod string
		paymentID     pgtype.Text
		status        string
		paymentStatus string
		customerName  string
		customerPhone string
		notes         string
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(
		&id, &number, &destinationID, &userID, &startDate, &endDate,
		&participants, &totalPrice, &paymentMethod, &paymentID,
		&status, &paymentStatus, &customerName, &customerPhone, &notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(totalPrice)
	if err != nil {
		return nil, err
	}

	return booking.ReconstructBooking(
		id, number, destinationID,
		pgconv.UUIDPtrFromPgtype(userID),
		startDate,
		pgconv.TimePtrFromDate(endDate),
		participants, price, paymentMethod,
		pgconv.StringPtrFromPgtype(paymentID),
		booking.Status(status), booking.PaymentStatus(paymentStatus),
		customerName, customerPhone, notes,
		createdAt, updatedAt,
	), nil
}
