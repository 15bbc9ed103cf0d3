package proformainvoice

import (
	"github.com/rutujak-bora/crm/internal/proformainvoice/repository"
	"github.com/rutujak-bora/crm/internal/proformainvoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("proformainvoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
