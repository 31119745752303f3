package email

import (
	"go.uber.org/fx"

	"github.com/kindredhq/kindred/domain/users"
)

// Module provides the email domain
var Module = fx.Module("email",
	fx.Provide(
		NewMailgunSender,
		NewTemplateService,
		NewService,
		func(s *Service) users.Mailer { return s },
	),
)
