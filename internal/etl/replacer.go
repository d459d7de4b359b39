package etl

import (
	"context"
	"fmt"
	"slices"

	"github.com/BartekS5/hubdb-sync/pkg/hubdb"
	"github.com/BartekS5/hubdb-sync/pkg/logger"
	"github.com/BartekS5/hubdb-sync/pkg/models"
	"github.com/sirupsen/logrus"
)

const defaultMaxClearPasses = 3

// TableReplacer empties the HubDB draft table and loads the new rows into it.
type TableReplacer struct {
	API       TableAPI
	BatchSize int
	// MaxClearPasses bounds how often the list-and-purge cycle is repeated
	// while rows keep appearing in the listing.
	MaxClearPasses int
}

func NewTableReplacer(api TableAPI, batchSize int) *TableReplacer {
	return &TableReplacer{API: api, BatchSize: batchSize, MaxClearPasses: defaultMaxClearPasses}
}

// Clear deletes every draft row and returns how many were purged. It lists and
// purges until a listing comes back empty.
func (r *TableReplacer) Clear(ctx context.Context) (int, error) {
	deleted := 0
	for pass := 1; ; pass++ {
		ids, err := r.listRowIDs(ctx)
		if err != nil {
			return deleted, err
		}
		if len(ids) == 0 {
			if deleted == 0 {
				logger.Info("Nothing to delete, table already empty")
			}
			return deleted, nil
		}
		if pass > r.maxPasses() {
			return deleted, fmt.Errorf("draft table still has %d rows after %d purge passes", len(ids), r.maxPasses())
		}

		logger.Infof("Found %d existing rows", len(ids))
		total := numBatches(len(ids), hubdb.MaxBatchSize)
		batchNum := 0
		for batch := range slices.Chunk(ids, hubdb.MaxBatchSize) {
			batchNum++
			if err := r.API.PurgeRows(ctx, batch); err != nil {
				return deleted, newRemoteAPIError("purge", batchNum, err)
			}
			deleted += len(batch)
			logger.Infof("  Deleted batch %d/%d (%d/%d rows)", batchNum, total, deleted, len(ids))
		}
	}
}

func (r *TableReplacer) listRowIDs(ctx context.Context) ([]string, error) {
	var ids []string
	after := ""
	for {
		page, err := r.API.ListRows(ctx, after)
		if err != nil {
			return nil, newRemoteAPIError("list", 0, err)
		}
		for _, row := range page.Rows {
			ids = append(ids, row.ID)
		}
		if page.Next == "" {
			return ids, nil
		}
		after = page.Next
	}
}

// Insert uploads rows in input order, one bulk-create call per batch, and
// returns the number of batches sent. It stops at the first failed batch.
func (r *TableReplacer) Insert(ctx context.Context, rows []models.TargetRow) (int, error) {
	if len(rows) == 0 {
		logger.Info("No rows to insert")
		return 0, nil
	}

	total := numBatches(len(rows), r.BatchSize)
	logger.Infof("Inserting %d rows across %d batches of %d...", len(rows), total, r.BatchSize)

	inserted, batchNum := 0, 0
	for batch := range slices.Chunk(rows, r.BatchSize) {
		batchNum++
		if err := r.API.CreateRows(ctx, batch); err != nil {
			logger.WithFields(logrus.Fields{"batch": batchNum, "batches": total}).Errorf("Batch insert failed: %v", err)
			return batchNum - 1, newRemoteAPIError("create", batchNum, err)
		}
		inserted += len(batch)
		logger.Infof("  Batch %d/%d inserted (%d/%d rows done)", batchNum, total, inserted, len(rows))
	}
	return batchNum, nil
}

func (r *TableReplacer) maxPasses() int {
	if r.MaxClearPasses < 1 {
		return defaultMaxClearPasses
	}
	return r.MaxClearPasses
}

func numBatches(n, size int) int {
	return (n + size - 1) / size
}
