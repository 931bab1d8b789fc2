package timeentry

import (
	"github.com/tallyworks/tally/internal/timeentry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("timeentry.service",
	fx.Provide(service.NewService),
)
