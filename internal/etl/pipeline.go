package etl

import (
	"context"
	"errors"
	"time"

	"github.com/BartekS5/hubdb-sync/pkg/logger"
	"github.com/BartekS5/hubdb-sync/pkg/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Pipeline runs extract -> map -> clear -> insert -> publish. Any stage error
// aborts the run; nothing is retried or rolled back.
type Pipeline struct {
	Extractor   Extractor
	Transformer *Transformer
	Replacer    *TableReplacer
	Publisher   *Publisher
	TableID     string
	DryRun      bool
}

func NewPipeline(ext Extractor, transformer *Transformer, api TableAPI, tableID string, batchSize int, dryRun bool) *Pipeline {
	return &Pipeline{
		Extractor:   ext,
		Transformer: transformer,
		Replacer:    NewTableReplacer(api, batchSize),
		Publisher:   &Publisher{API: api},
		TableID:     tableID,
		DryRun:      dryRun,
	}
}

// Run executes one sync. The returned result is always non-nil and describes
// how far the run got.
func (p *Pipeline) Run(ctx context.Context) (*models.RunResult, error) {
	res := &models.RunResult{
		ID:        uuid.NewString(),
		TableID:   p.TableID,
		StartedAt: time.Now(),
	}
	log := logger.WithFields(logrus.Fields{"run_id": res.ID, "table_id": p.TableID})
	log.Infof("Starting sync. Batch Size: %d, DryRun: %v", p.Replacer.BatchSize, p.DryRun)

	err := p.run(ctx, res)
	res.FinishedAt = time.Now()

	if err != nil {
		res.Status = models.RunStatusError
		res.Error = err.Error()
		var se *StageError
		if errors.As(err, &se) {
			res.FailedStage = se.Stage
		}
		log.WithField("stage", res.FailedStage).Errorf("Sync failed after %.1fs: %v", res.Duration().Seconds(), err)
		return res, err
	}

	if p.DryRun {
		res.Status = models.RunStatusDryRun
	} else {
		res.Status = models.RunStatusSuccess
	}

	rate := 0.0
	if secs := res.Duration().Seconds(); secs > 0 {
		rate = float64(res.RowsInserted) / secs
	}
	log.Infof("Sync complete: %d rows in %.1fs (%.2f rows/sec)", res.RowsInserted, res.Duration().Seconds(), rate)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, res *models.RunResult) error {
	rs, err := p.Extractor.Extract(ctx)
	if err != nil {
		return &StageError{Stage: StageExtract, Err: err}
	}
	res.RowsRead = len(rs.Records)

	logger.Info("Transforming rows to HubDB format...")
	rows, err := p.Transformer.TransformAll(rs)
	if err != nil {
		return &StageError{Stage: StageMap, Err: err}
	}
	logger.Infof("%d rows ready to insert", len(rows))

	if p.DryRun {
		logger.Infof("[DRY RUN] Would replace table %s with %d rows in %d batches",
			p.TableID, len(rows), numBatches(len(rows), p.Replacer.BatchSize))
		return nil
	}

	if res.RowsDeleted, err = p.Replacer.Clear(ctx); err != nil {
		return &StageError{Stage: StageClear, Err: err}
	}
	logger.Infof("Cleared %d rows", res.RowsDeleted)

	batches, err := p.Replacer.Insert(ctx, rows)
	res.Batches = batches
	res.RowsInserted = min(batches*p.Replacer.BatchSize, len(rows))
	if err != nil {
		return &StageError{Stage: StageInsert, Err: err}
	}

	if err := p.Publisher.Publish(ctx); err != nil {
		return &StageError{Stage: StagePublish, Err: err}
	}
	return nil
}
