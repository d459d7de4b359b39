package etl

import (
	"context"

	"github.com/BartekS5/hubdb-sync/pkg/hubdb"
	"github.com/BartekS5/hubdb-sync/pkg/models"
)

type Extractor interface {
	Extract(ctx context.Context) (*models.ResultSet, error)
}

// TableAPI is the part of the HubDB draft API the replacer and publisher use.
// *hubdb.Client implements it.
type TableAPI interface {
	ListRows(ctx context.Context, after string) (hubdb.RowPage, error)
	PurgeRows(ctx context.Context, ids []string) error
	CreateRows(ctx context.Context, rows []models.TargetRow) error
	Publish(ctx context.Context) error
}

var _ TableAPI = (*hubdb.Client)(nil)
