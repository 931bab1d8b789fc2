package payable

import (
	"github.com/tallyworks/tally/internal/payable/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payable.service",
	fx.Provide(service.NewService),
)
