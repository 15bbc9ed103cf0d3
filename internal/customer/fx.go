package customer

import (
	"github.com/rutujak-bora/crm/internal/customer/repository"
	"github.com/rutujak-bora/crm/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
