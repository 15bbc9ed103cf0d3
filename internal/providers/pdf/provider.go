package pdf

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

// Provider renders documents to PDF bytes.
type Provider interface {
	ProformaInvoice(ctx context.Context, data ProformaInvoiceData) ([]byte, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) ProformaInvoice(ctx context.Context, data ProformaInvoiceData) ([]byte, error) {
	return nil, nil
}
