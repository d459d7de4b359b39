package etl

import (
	"context"

	"github.com/BartekS5/hubdb-sync/pkg/logger"
)

// Publisher promotes the draft table so the replaced rows become live.
type Publisher struct {
	API TableAPI
}

func (p *Publisher) Publish(ctx context.Context) error {
	logger.Info("Publishing table to make changes live...")
	if err := p.API.Publish(ctx); err != nil {
		return newRemoteAPIError("publish", 0, err)
	}
	logger.Info("Table published successfully")
	return nil
}
