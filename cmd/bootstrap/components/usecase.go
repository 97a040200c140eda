package components

import (
	"tourbook/internal/domain/booking"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/config"
	"tourbook/internal/usecase"
	"tourbook/internal/usecase/authz"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
	usecaseValidatorsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	authz.NewGate,
	fx.Annotate(
		booking.NewStandardPriceCalculator,
		fx.As(new(booking.PriceCalculator)),
	),
	fx.Annotate(
		booking.NewRandomNumberGenerator,
		fx.As(new(booking.NumberGenerator)),
	),
	booking.NewFactory,
	func(cfg config.Config) config.SweepConfig {
		return cfg.Sweep
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
		commands.NewSweepCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
