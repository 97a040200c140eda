package repository

import (
	"context"

	"tourbook/internal/infra"
	"tourbook/internal/pkg/pgconv"
	"tourbook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DestinationRepository reads the catalog the bookings reference. The core
// never writes this table.
type DestinationRepository struct {
	db *pgxpool.Pool
}

func NewDestinationRepository(db *pgxpool.Pool) *DestinationRepository {
	return &DestinationRepository{db: db}
}

func (r *DestinationRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.DestinationSnapshot, error) {
	var (
		snap      commands.DestinationSnapshot
		unitPrice string
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, name, unit_price::text, capacity
		FROM destinations
		WHERE id = $1`, id,
	).Scan(&snap.ID, &snap.Name, &unitPrice, &snap.Capacity)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("destination not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find destination by ID", err)
	}

	snap.UnitPrice, err = decimal.NewFromString(unitPrice)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid unit price in catalog", err)
	}
	return &snap, nil
}
