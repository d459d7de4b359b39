package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Field types understood by the row mapper. An empty type means the value is
// coerced based on its Go type and the column's database type.
const (
	TypeAuto     = ""
	TypeString   = "string"
	TypeNumber   = "number"
	TypeInt      = "int"
	TypeBool     = "bool"
	TypeDate     = "date"
	TypeDateTime = "datetime"
)

// MappingSchema represents the root of the JSON mapping file.
type MappingSchema struct {
	Table  string        `json:"table,omitempty"`
	Fields []FieldConfig `json:"fields"`
}

// FieldConfig maps one warehouse column to one HubDB column.
type FieldConfig struct {
	Source   string          `json:"source"`
	Target   string          `json:"target,omitempty"`
	Type     string          `json:"type,omitempty"`
	Required bool            `json:"required,omitempty"`
	Default  json.RawMessage `json:"default,omitempty"`
}

// TargetColumn returns the HubDB column name, defaulting to the source column.
func (f FieldConfig) TargetColumn() string {
	if f.Target != "" {
		return f.Target
	}
	return f.Source
}

// HasDefault reports whether a non-null default was configured.
func (f FieldConfig) HasDefault() bool {
	return len(f.Default) > 0 && string(f.Default) != "null"
}

// DefaultValue decodes the configured default.
func (f FieldConfig) DefaultValue() (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(f.Default, &v); err != nil {
		return nil, fmt.Errorf("invalid default for %s: %w", f.Source, err)
	}
	return v, nil
}

// Validate checks the schema for rules the mapper cannot apply.
func (m *MappingSchema) Validate() error {
	if len(m.Fields) == 0 {
		return errors.New("mapping has no fields")
	}
	seen := make(map[string]bool, len(m.Fields))
	for i, f := range m.Fields {
		if f.Source == "" {
			return fmt.Errorf("field %d: source column is empty", i)
		}
		switch f.Type {
		case TypeAuto, TypeString, TypeNumber, TypeInt, TypeBool, TypeDate, TypeDateTime:
		default:
			return fmt.Errorf("field %s: unknown type %q", f.Source, f.Type)
		}
		if f.HasDefault() {
			if _, err := f.DefaultValue(); err != nil {
				return err
			}
		}
		target := f.TargetColumn()
		if seen[target] {
			return fmt.Errorf("field %s: duplicate target column %q", f.Source, target)
		}
		seen[target] = true
	}
	return nil
}

func LoadMapping(data []byte) (*MappingSchema, error) {
	var m MappingSchema
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
