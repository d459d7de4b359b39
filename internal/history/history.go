// Package history keeps an audit trail of sync runs in MongoDB. The sync
// itself never reads it back.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/hubdb-sync/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "sync_runs"

type Recorder interface {
	Record(ctx context.Context, r *models.RunResult) error
}

// NopRecorder is used when no MongoDB is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *models.RunResult) error { return nil }

// RunDocument is the stored form of a RunResult.
type RunDocument struct {
	RunID        string             `bson:"_id"`
	TableID      string             `bson:"table_id"`
	StartedAt    primitive.DateTime `bson:"started_at"`
	FinishedAt   primitive.DateTime `bson:"finished_at"`
	DurationMS   int64              `bson:"duration_ms"`
	RowsRead     int                `bson:"rows_read"`
	RowsDeleted  int                `bson:"rows_deleted"`
	RowsInserted int                `bson:"rows_inserted"`
	Batches      int                `bson:"batches"`
	Status       string             `bson:"status"`
	FailedStage  string             `bson:"failed_stage,omitempty"`
	Error        string             `bson:"error,omitempty"`
}

func NewRunDocument(r *models.RunResult) RunDocument {
	return RunDocument{
		RunID:        r.ID,
		TableID:      r.TableID,
		StartedAt:    primitive.NewDateTimeFromTime(r.StartedAt),
		FinishedAt:   primitive.NewDateTimeFromTime(r.FinishedAt),
		DurationMS:   r.Duration().Milliseconds(),
		RowsRead:     r.RowsRead,
		RowsDeleted:  r.RowsDeleted,
		RowsInserted: r.RowsInserted,
		Batches:      r.Batches,
		Status:       r.Status,
		FailedStage:  r.FailedStage,
		Error:        r.Error,
	}
}

// RunResult converts the document back for display.
func (d RunDocument) RunResult() *models.RunResult {
	return &models.RunResult{
		ID:           d.RunID,
		TableID:      d.TableID,
		StartedAt:    d.StartedAt.Time().UTC(),
		FinishedAt:   d.FinishedAt.Time().UTC(),
		RowsRead:     d.RowsRead,
		RowsDeleted:  d.RowsDeleted,
		RowsInserted: d.RowsInserted,
		Batches:      d.Batches,
		Status:       d.Status,
		FailedStage:  d.FailedStage,
		Error:        d.Error,
	}
}

type MongoRecorder struct {
	Collection *mongo.Collection
}

func NewMongoRecorder(client *mongo.Client, database string) *MongoRecorder {
	return &MongoRecorder{Collection: client.Database(database).Collection(CollectionName)}
}

func (m *MongoRecorder) Record(ctx context.Context, r *models.RunResult) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := m.Collection.InsertOne(ctx, NewRunDocument(r)); err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns the newest runs for a table, newest first.
func (m *MongoRecorder) Recent(ctx context.Context, tableID string, limit int64) ([]*models.RunResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}).SetLimit(limit)
	cursor, err := m.Collection.Find(ctx, bson.M{"table_id": tableID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []RunDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode run history: %w", err)
	}
	out := make([]*models.RunResult, len(docs))
	for i, d := range docs {
		out[i] = d.RunResult()
	}
	return out, nil
}
