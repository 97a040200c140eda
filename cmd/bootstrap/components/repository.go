package components

import (
	"tourbook/internal/infra/readstore"
	"tourbook/internal/infra/repository"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repository.NewBookingRepository,
			fx.As(new(commands.BookingRepository)),
		),
		fx.Annotate(
			repository.NewDestinationRepository,
			fx.As(new(commands.DestinationRepository)),
		),
		// Read-side store for queries
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
	),
)
