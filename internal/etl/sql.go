package etl

import (
	"context"
	"database/sql"
	"encoding/base64"
	"strings"

	"github.com/BartekS5/hubdb-sync/pkg/logger"
	"github.com/BartekS5/hubdb-sync/pkg/models"
	mssql "github.com/microsoft/go-mssqldb"
)

// binaryTypes are sent to HubDB base64 encoded.
var binaryTypes = map[string]bool{
	"BINARY":     true,
	"VARBINARY":  true,
	"IMAGE":      true,
	"TIMESTAMP":  true,
	"ROWVERSION": true,
}

// SQLExtractor runs one fixed query against the warehouse and materialises
// the whole result. The connection is opened for the extraction only.
type SQLExtractor struct {
	Connect func(ctx context.Context) (*sql.DB, error)
	Query   string
}

func (s *SQLExtractor) Extract(ctx context.Context) (*models.ResultSet, error) {
	logger.Info("Connecting to data warehouse...")
	db, err := s.Connect(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer db.Close()

	logger.Info("Executing query...")
	rows, err := db.QueryContext(ctx, s.Query)
	if err != nil {
		return nil, &QueryError{Query: s.Query, Err: err}
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, &QueryError{Query: s.Query, Err: err}
	}
	cols := make([]models.Column, len(colTypes))
	for i, ct := range colTypes {
		cols[i] = models.Column{Name: ct.Name(), DatabaseType: ct.DatabaseTypeName()}
	}

	rs := &models.ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		pointers := make([]interface{}, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, &QueryError{Query: s.Query, Err: err}
		}
		for i, v := range values {
			b, ok := v.([]byte)
			if !ok {
				continue
			}
			if values[i], err = bytesValue(b, cols[i].DatabaseType); err != nil {
				return nil, &MappingError{Row: len(rs.Records) + 1, Column: cols[i].Name, Err: err}
			}
		}
		rs.Records = append(rs.Records, models.SourceRecord{Columns: cols, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: s.Query, Err: err}
	}

	logger.Infof("Fetched %d rows with %d columns", len(rs.Records), len(cols))
	return rs, nil
}

// bytesValue turns a raw driver value into text according to its column type.
// Decimal and character types arrive as their text representation.
func bytesValue(b []byte, dbType string) (interface{}, error) {
	switch dbType = strings.ToUpper(dbType); {
	case dbType == "UNIQUEIDENTIFIER":
		var id mssql.UniqueIdentifier
		if err := id.Scan(b); err != nil {
			return nil, err
		}
		return id.String(), nil
	case binaryTypes[dbType]:
		return base64.StdEncoding.EncodeToString(b), nil
	default:
		return string(b), nil
	}
}
