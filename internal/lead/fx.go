package lead

import (
	"github.com/rutujak-bora/crm/internal/lead/repository"
	"github.com/rutujak-bora/crm/internal/lead/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lead.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
