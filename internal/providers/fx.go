package providers

import (
	"github.com/rutujak-bora/crm/internal/providers/email"
	"github.com/rutujak-bora/crm/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
