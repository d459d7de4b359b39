package etl

import (
	"errors"
	"fmt"

	"github.com/BartekS5/hubdb-sync/pkg/models"
	"github.com/BartekS5/hubdb-sync/pkg/utils"
)

var errRequiredValue = errors.New("required value is null and no default defined")

// Transformer converts warehouse records into HubDB rows. Without a mapping
// every column is passed through under its own name.
type Transformer struct {
	Config    *models.MappingSchema
	validator *Validator
}

func NewTransformer(config *models.MappingSchema) *Transformer {
	return &Transformer{Config: config, validator: NewValidator(config)}
}

// TransformAll maps a whole result set, preserving order. It fails on the
// first record that cannot be mapped.
func (t *Transformer) TransformAll(rs *models.ResultSet) ([]models.TargetRow, error) {
	if err := t.validator.ValidateColumns(rs.Columns); err != nil {
		return nil, err
	}
	out := make([]models.TargetRow, 0, len(rs.Records))
	for i, rec := range rs.Records {
		row, err := t.Transform(i+1, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Transform maps one record. rowNum is used for error reporting only.
func (t *Transformer) Transform(rowNum int, rec models.SourceRecord) (models.TargetRow, error) {
	if t.Config == nil {
		return t.passthrough(rowNum, rec)
	}

	values := make(map[string]interface{}, len(t.Config.Fields))
	for _, f := range t.Config.Fields {
		val, col, _ := rec.Lookup(f.Source)
		if val == nil {
			v, err := t.fallback(rowNum, f)
			if err != nil {
				return models.TargetRow{}, err
			}
			values[f.TargetColumn()] = v
			continue
		}
		converted, err := utils.ConvertToHubDBType(val, f.Type, col.DatabaseType)
		if err != nil {
			return models.TargetRow{}, &MappingError{Row: rowNum, Column: f.Source, Err: err}
		}
		values[f.TargetColumn()] = converted
	}
	return models.TargetRow{Values: values}, nil
}

func (t *Transformer) passthrough(rowNum int, rec models.SourceRecord) (models.TargetRow, error) {
	values := make(map[string]interface{}, len(rec.Columns))
	for i, col := range rec.Columns {
		converted, err := utils.ConvertToHubDBType(rec.Values[i], models.TypeAuto, col.DatabaseType)
		if err != nil {
			return models.TargetRow{}, &MappingError{Row: rowNum, Column: col.Name, Err: err}
		}
		values[col.Name] = converted
	}
	return models.TargetRow{Values: values}, nil
}

// fallback resolves a missing or null source value.
func (t *Transformer) fallback(rowNum int, f models.FieldConfig) (interface{}, error) {
	if f.HasDefault() {
		def, err := f.DefaultValue()
		if err != nil {
			return nil, &MappingError{Row: rowNum, Column: f.Source, Err: err}
		}
		converted, err := utils.ConvertToHubDBType(def, f.Type, "")
		if err != nil {
			return nil, &MappingError{Row: rowNum, Column: f.Source, Err: fmt.Errorf("default: %w", err)}
		}
		return converted, nil
	}
	if f.Required {
		return nil, &MappingError{Row: rowNum, Column: f.Source, Err: errRequiredValue}
	}
	return nil, nil
}
