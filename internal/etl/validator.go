package etl

import (
	"errors"

	"github.com/BartekS5/hubdb-sync/pkg/logger"
	"github.com/BartekS5/hubdb-sync/pkg/models"
)

var errColumnMissing = errors.New("column not returned by the warehouse query and no default defined")

type Validator struct {
	Config *models.MappingSchema
}

func NewValidator(config *models.MappingSchema) *Validator {
	return &Validator{Config: config}
}

// ValidateColumns checks the result set's columns against the mapping before
// any row is converted. A required rule without a default must find its
// source column.
func (v *Validator) ValidateColumns(columns []models.Column) error {
	if v.Config == nil {
		return nil
	}
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c.Name] = true
	}
	for _, f := range v.Config.Fields {
		if present[f.Source] || f.HasDefault() {
			continue
		}
		if f.Required {
			return &MappingError{Column: f.Source, Err: errColumnMissing}
		}
		logger.Warnf("Optional column %s is not in the result set; %s will be null", f.Source, f.TargetColumn())
	}
	return nil
}
