package margin

import (
	"github.com/rutujak-bora/crm/internal/margin/repository"
	"github.com/rutujak-bora/crm/internal/margin/service"
	"go.uber.org/fx"
)

var Module = fx.Module("margin.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
