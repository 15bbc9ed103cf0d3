package purchaseorder

import (
	"github.com/rutujak-bora/crm/internal/purchaseorder/repository"
	"github.com/rutujak-bora/crm/internal/purchaseorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchaseorder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
