package auth

import (
	"go.uber.org/fx"

	"github.com/kindredhq/kindred/domain/email"
	"github.com/kindredhq/kindred/domain/users"
)

// Module provides the auth domain
var Module = fx.Module("auth-domain",
	fx.Provide(
		func(s users.Store) Store { return s },
		func(s *email.Service) ResetMailer { return s },
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
