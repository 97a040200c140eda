//go:build unit

package pgconv_test

import (
	"fmt"
	"testing"
	"time"

	"tourbook/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDPtrFromPgtype(t *testing.T) {
	id := uuid.New()
	got := pgconv.UUIDPtrFromPgtype(pgtype.UUID{Bytes: id, Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	assert.Nil(t, pgconv.UUIDPtrFromPgtype(pgtype.UUID{}))
}

func TestStringPtrFromPgtype(t *testing.T) {
	got := pgconv.StringPtrFromPgtype(pgtype.Text{String: "pay_8839", Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, "pay_8839", *got)

	assert.Nil(t, pgconv.StringPtrFromPgtype(pgtype.Text{}))
}

func TestTimePtrFromDate(t *testing.T) {
	day := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	got := pgconv.TimePtrFromDate(pgtype.Date{Time: day, Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, day, *got)

	assert.Nil(t, pgconv.TimePtrFromDate(pgtype.Date{}))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, pgconv.IsNoRows(pgx.ErrNoRows))
	assert.True(t, pgconv.IsNoRows(fmt.Errorf("scan booking: %w", pgx.ErrNoRows)))
	assert.False(t, pgconv.IsNoRows(fmt.Errorf("some other error")))
	assert.False(t, pgconv.IsNoRows(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	assert.True(t, pgconv.IsUniqueViolation(dup))
	assert.True(t, pgconv.IsUniqueViolation(fmt.Errorf("insert booking: %w", dup)))

	other := &pgconn.PgError{Code: "23503"}
	assert.False(t, pgconv.IsUniqueViolation(other))
	assert.False(t, pgconv.IsUniqueViolation(nil))
}
