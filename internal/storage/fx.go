package storage

import (
	"github.com/rutujak-bora/crm/internal/config"
	"go.uber.org/fx"
)

const (
	CRMURLPrefix    = "/api/uploads"
	GemBidURLPrefix = "/api/gem-bid/uploads"
)

// Stores holds one directory per namespace.
type Stores struct {
	CRM    *Store
	GemBid *Store
}

var Module = fx.Module("storage",
	fx.Provide(NewStores),
)

func NewStores(cfg config.Config) (*Stores, error) {
	crm, err := New(cfg.Uploads.CRMDir, CRMURLPrefix)
	if err != nil {
		return nil, err
	}
	gemBid, err := New(cfg.Uploads.GemBidDir, GemBidURLPrefix)
	if err != nil {
		return nil, err
	}
	return &Stores{CRM: crm, GemBid: gemBid}, nil
}
