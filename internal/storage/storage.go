package storage

import (
	"uirunner/internal/config"
	"uirunner/internal/domain"
)

// Storage persists and loads the last run (e.g. for the results viewer).
type Storage interface {
	Save(output *domain.RunOutput) error
	Load() (*domain.RunOutput, error)
}

// JSONStorage stores runs in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
