package cli

import (
	"context"
	"database/sql"
	"time"

	"github.com/BartekS5/hubdb-sync/internal/config"
	"github.com/BartekS5/hubdb-sync/internal/etl"
	"github.com/BartekS5/hubdb-sync/internal/history"
	"github.com/BartekS5/hubdb-sync/internal/monitoring"
	"github.com/BartekS5/hubdb-sync/pkg/database"
	"github.com/BartekS5/hubdb-sync/pkg/hubdb"
	"github.com/BartekS5/hubdb-sync/pkg/logger"
)

// syncJob holds everything one or more sync runs share: the HubDB client,
// metrics and the run history connection.
type syncJob struct {
	cfg      *config.Config
	pipeline *etl.Pipeline
	monitor  *monitoring.Monitor
	recorder history.Recorder
	closers  []func()
}

func newSyncJob(ctx context.Context, opts *SyncOptions) (*syncJob, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := opts.Apply(cfg); err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}

	mapping, err := config.LoadMapping(cfg.MappingFile)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		logger.Info("No mapping file, passing every column through")
	}

	job := &syncJob{cfg: cfg, monitor: monitoring.NewMonitor(), recorder: history.NopRecorder{}}
	job.closers = append(job.closers, logger.Close)

	client := hubdb.NewClient(hubdb.Options{
		BaseURL:            cfg.APIBaseURL,
		Token:              cfg.HubSpotToken,
		TableID:            cfg.TableID,
		Timeout:            cfg.HTTPTimeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		OnResponse:         job.monitor.ObserveRequest,
	})

	extractor := &etl.SQLExtractor{
		Query: cfg.Query,
		Connect: func(ctx context.Context) (*sql.DB, error) {
			logger.Infof("Opening warehouse connection %s", database.Redacted(cfg.SQLConnString))
			db, err := database.ConnectSQL(ctx, cfg.SQLConnString)
			if err != nil {
				return nil, err
			}
			job.monitor.RegisterDB(db)
			return db, nil
		},
	}

	if cfg.MongoConnString != "" {
		mongoClient, err := database.ConnectMongo(ctx, cfg.MongoConnString)
		if err != nil {
			logger.Warnf("Run history disabled: %v", err)
		} else {
			job.recorder = history.NewMongoRecorder(mongoClient, cfg.MongoDatabase)
			job.closers = append(job.closers, func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mongoClient.Disconnect(ctx)
			})
		}
	}

	job.pipeline = etl.NewPipeline(extractor, etl.NewTransformer(mapping), client, cfg.TableID, cfg.BatchSize, opts.DryRun)
	return job, nil
}

// run performs one sync, then records it. Recording and metric push failures
// are logged and never change the outcome.
func (j *syncJob) run(ctx context.Context) error {
	res, err := j.pipeline.Run(ctx)

	j.monitor.ObserveRun(res)

	// The run is recorded even if ctx was cancelled mid-run.
	bg := context.WithoutCancel(ctx)
	if recErr := j.recorder.Record(bg, res); recErr != nil {
		logger.Warnf("Could not record run history: %v", recErr)
	}
	if j.cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(bg, 10*time.Second)
		defer cancel()
		if pushErr := j.monitor.Push(pushCtx, j.cfg.PushgatewayURL, j.cfg.TableID); pushErr != nil {
			logger.Warnf("Could not push metrics: %v", pushErr)
		}
	}
	return err
}

func (j *syncJob) close() {
	for i := len(j.closers) - 1; i >= 0; i-- {
		j.closers[i]()
	}
}

func runSync(ctx context.Context, opts *SyncOptions) error {
	job, err := newSyncJob(ctx, opts)
	if err != nil {
		return err
	}
	defer job.close()

	return job.run(ctx)
}
