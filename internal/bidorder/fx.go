package bidorder

import (
	"github.com/rutujak-bora/crm/internal/bidorder/repository"
	"github.com/rutujak-bora/crm/internal/bidorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bidorder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
