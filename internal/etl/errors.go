package etl

import (
	"errors"
	"fmt"

	"github.com/BartekS5/hubdb-sync/pkg/hubdb"
)

// Pipeline stages, used to tag errors and log lines.
const (
	StageExtract = "extract"
	StageMap     = "map"
	StageClear   = "clear"
	StageInsert  = "insert"
	StagePublish = "publish"
)

// ConnectionError means the warehouse was unreachable or rejected the credentials.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("warehouse connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError means the warehouse accepted the connection but the query failed.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("warehouse query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// MappingError means a source record could not be turned into a HubDB row.
// Row is the 1-based record position, or 0 when the problem is with the
// result set's columns rather than a single record.
type MappingError struct {
	Row    int
	Column string
	Err    error
}

func (e *MappingError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("mapping column %s: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("mapping row %d column %s: %v", e.Row, e.Column, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// RemoteAPIError is a failed HubDB call. StatusCode is 0 when no response was
// received. Batch is the 1-based batch number for batched operations.
type RemoteAPIError struct {
	Operation  string
	Batch      int
	StatusCode int
	Body       string
	Err        error
}

func newRemoteAPIError(op string, batch int, err error) *RemoteAPIError {
	e := &RemoteAPIError{Operation: op, Batch: batch, Err: err}
	var apiErr *hubdb.APIError
	if errors.As(err, &apiErr) {
		e.StatusCode = apiErr.StatusCode
		e.Body = apiErr.Body
	}
	return e
}

func (e *RemoteAPIError) Error() string {
	if e.Batch > 0 {
		return fmt.Sprintf("hubdb %s batch %d failed: %v", e.Operation, e.Batch, e.Err)
	}
	return fmt.Sprintf("hubdb %s failed: %v", e.Operation, e.Err)
}

func (e *RemoteAPIError) Unwrap() error { return e.Err }

// StageError tags an error with the pipeline stage it came from.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
