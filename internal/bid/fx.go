package bid

import (
	"github.com/rutujak-bora/crm/internal/bid/repository"
	"github.com/rutujak-bora/crm/internal/bid/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bid.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
