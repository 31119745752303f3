package family

import (
	"go.uber.org/fx"
)

// Module provides the family domain
var Module = fx.Module("family",
	fx.Provide(
		NewRepository,
		func(r *Repository) Store { return r },
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
