package readstore

import (
	"context"
	"fmt"
	"time"

	"tourbook/internal/infra"
	"tourbook/internal/pkg/pgconv"
	"tourbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type BookingReadStore struct {
	db *pgxpool.Pool
}

func NewBookingReadStore(db *pgxpool.Pool) *BookingReadStore {
	return &BookingReadStore{db: db}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	var (
		view       queries.BookingView
		userID     pgtype.UUID
		endDate    pgtype.Date
		totalPrice string
		paymentID  pgtype.Text
	)

	err := r.db.QueryRow(ctx, `
		SELECT b.id, b.booking_number, b.destination_id, d.name,
		       b.user_id, b.start_date, b.end_date, b.participants,
		       b.total_price::text, b.payment_method, b.payment_id,
		       b.status, b.payment_status, b.customer_name, b.customer_phone,
		       b.notes, b.created_at, b.updated_at
		FROM bookings b
		JOIN destinations d ON d.id = b.destination_id
		WHERE b.id = $1`, id,
	).Scan(
		&view.ID, &view.BookingNumber, &view.DestinationID, &view.DestinationName,
		&userID, &view.StartDate, &endDate, &view.Participants,
		&totalPrice, &view.PaymentMethod, &paymentID,
		&view.Status, &view.PaymentStatus, &view.CustomerName, &view.CustomerPhone,
		&view.Notes, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking view by ID", err)
	}

	view.UserID = pgconv.UUIDPtrFromPgtype(userID)
	view.EndDate = pgconv.TimePtrFromDate(endDate)
	view.PaymentID = pgconv.StringPtrFromPgtype(paymentID)
	view.TotalPrice, err = decimal.NewFromString(totalPrice)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid total price in store", err)
	}
	return &view, nil
}

func (r *BookingReadStore) List(ctx context.Context, filter queries.BookingFilter) ([]*queries.BookingListItem, error) {
	sql := `
		SELECT b.id, b.booking_number, b.destination_id, d.name,
		       b.start_date, b.participants, b.total_price::text,
		       b.status, b.payment_status, b.customer_name, b.created_at
		FROM bookings b
		JOIN destinations d ON d.id = b.destination_id
		WHERE 1=1`
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		sql += fmt.Sprintf(" AND b.user_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		sql += fmt.Sprintf(" AND b.status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		sql += fmt.Sprintf(" AND (b.booking_number ILIKE $%d OR b.customer_name ILIKE $%d)", len(args), len(args))
	}

	args = append(args, filter.Limit)
	sql += fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var result []*queries.BookingListItem
	for rows.Next() {
		var (
			item       queries.BookingListItem
			totalPrice string
			startDate  time.Time
		)
		err := rows.Scan(
			&item.ID, &item.BookingNumber, &item.DestinationID, &item.DestinationName,
			&startDate, &item.Participants, &totalPrice,
			&item.Status, &item.PaymentStatus, &item.CustomerName, &item.CreatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list row", err)
		}
		item.StartDate = startDate
		item.TotalPrice, err = decimal.NewFromString(totalPrice)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid total price in store", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking list", err)
	}
	return result, nil
}
