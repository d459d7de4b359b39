package config

import (
	"fmt"
	"os"

	"github.com/BartekS5/hubdb-sync/pkg/models"
)

// LoadMapping reads and parses the mapping file from the given path.
// An empty path means no mapping: every column is passed through.
func LoadMapping(filePath string) (*models.MappingSchema, error) {
	if filePath == "" {
		return nil, nil
	}

	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file '%s': %w", filePath, err)
	}

	mapping, err := models.LoadMapping(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file '%s': %w", filePath, err)
	}
	return mapping, nil
}
