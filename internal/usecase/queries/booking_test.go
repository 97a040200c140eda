//go:build unit

package queries_test

import (
	"context"
	"testing"

	"tourbook/internal/infra"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/authz"
	"tourbook/internal/usecase/queries"
	"tourbook/tests/common/builder"
	queriesmock "tourbook/tests/mock/queries"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBookingQueriesGetByID(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*queriesmock.MockBookingReadStore, queries.BookingQueries) {
		t.Helper()
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockBookingReadStore(ctrl)
		return store, queries.NewBookingQueries(store)
	}

	t.Run("owner reads own booking", func(t *testing.T) {
		store, q := setup(t)
		view := builder.NewBookingBuilder().BuildViewQuery()
		store.EXPECT().FindByID(gomock.Any(), view.ID).Return(view, nil)

		actor := authz.Actor{Role: authz.RoleCustomer, UserID: view.UserID}
		got, err := q.GetByID(ctx, actor, view.ID)
		require.NoError(t, err)

		if diff := cmp.Diff(view, got, cmpopts.IgnoreUnexported(decimal.Decimal{})); diff != "" {
			t.Errorf("view mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("customer reading foreign booking gets not found", func(t *testing.T) {
		store, q := setup(t)
		view := builder.NewBookingBuilder().BuildViewQuery()
		store.EXPECT().FindByID(gomock.Any(), view.ID).Return(view, nil)

		stranger := uuid.New()
		actor := authz.Actor{Role: authz.RoleCustomer, UserID: &stranger}
		_, err := q.GetByID(ctx, actor, view.ID)
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
		assert.NotErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("customer reading guest booking gets not found", func(t *testing.T) {
		store, q := setup(t)
		view := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) { b.UserID = nil }).BuildViewQuery()
		store.EXPECT().FindByID(gomock.Any(), view.ID).Return(view, nil)

		someone := uuid.New()
		actor := authz.Actor{Role: authz.RoleCustomer, UserID: &someone}
		_, err := q.GetByID(ctx, actor, view.ID)
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
	})

	t.Run("anonymous caller reads by booking id", func(t *testing.T) {
		store, q := setup(t)
		view := builder.NewBookingBuilder().BuildViewQuery()
		store.EXPECT().FindByID(gomock.Any(), view.ID).Return(view, nil)

		got, err := q.GetByID(ctx, authz.Anonymous(), view.ID)
		require.NoError(t, err)
		assert.Equal(t, view.ID, got.ID)
	})

	t.Run("admin reads any booking", func(t *testing.T) {
		store, q := setup(t)
		view := builder.NewBookingBuilder().BuildViewQuery()
		store.EXPECT().FindByID(gomock.Any(), view.ID).Return(view, nil)

		adminID := uuid.New()
		actor := authz.Actor{Role: authz.RoleAdmin, UserID: &adminID}
		got, err := q.GetByID(ctx, actor, view.ID)
		require.NoError(t, err)
		assert.Equal(t, view.ID, got.ID)
	})

	t.Run("missing booking", func(t *testing.T) {
		store, q := setup(t)
		id := uuid.New()
		store.EXPECT().FindByID(gomock.Any(), id).
			Return(nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound))

		_, err := q.GetByID(ctx, authz.Anonymous(), id)
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		store, q := setup(t)
		id := uuid.New()
		store.EXPECT().FindByID(gomock.Any(), id).
			Return(nil, infra.WrapRepoErr("connection reset", nil))

		_, err := q.GetByID(ctx, authz.Anonymous(), id)
		assert.True(t, errs.Is(err, errs.ErrStoreUnavailable))
	})
}

func TestBookingQueriesList(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*queriesmock.MockBookingReadStore, queries.BookingQueries) {
		t.Helper()
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockBookingReadStore(ctrl)
		return store, queries.NewBookingQueries(store)
	}

	t.Run("customer filter is forced to own bookings", func(t *testing.T) {
		store, q := setup(t)
		ownerID := uuid.New()
		foreign := uuid.New()
		item := builder.NewBookingBuilder().BuildListItemQuery()

		store.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter queries.BookingFilter) ([]*queries.BookingListItem, error) {
				require.NotNil(t, filter.OwnerID)
				assert.Equal(t, ownerID, *filter.OwnerID, "requested foreign owner must be overridden")
				assert.Equal(t, int32(100), filter.Limit)
				return []*queries.BookingListItem{item}, nil
			})

		actor := authz.Actor{Role: authz.RoleCustomer, UserID: &ownerID}
		items, err := q.List(ctx, actor, queries.BookingFilter{OwnerID: &foreign})
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("admin filter passes through", func(t *testing.T) {
		store, q := setup(t)
		ownerID := uuid.New()
		status := "pending"

		store.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter queries.BookingFilter) ([]*queries.BookingListItem, error) {
				require.NotNil(t, filter.OwnerID)
				assert.Equal(t, ownerID, *filter.OwnerID)
				require.NotNil(t, filter.Status)
				assert.Equal(t, status, *filter.Status)
				return []*queries.BookingListItem{}, nil
			})

		adminID := uuid.New()
		actor := authz.Actor{Role: authz.RoleAdmin, UserID: &adminID}
		_, err := q.List(ctx, actor, queries.BookingFilter{OwnerID: &ownerID, Status: &status})
		require.NoError(t, err)
	})

	t.Run("anonymous caller gets an empty list without touching the store", func(t *testing.T) {
		_, q := setup(t)

		items, err := q.List(ctx, authz.Anonymous(), queries.BookingFilter{})
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
