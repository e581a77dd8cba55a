package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/domain"
	"github.com/sotkanet-dashboard/internal/domain/repository"
)

// FileRepository хранит снимок метаданных в JSON-файле
type FileRepository struct {
	path   string
	logger *zap.Logger
}

// NewFileRepository создает файловое хранилище снимка метаданных
func NewFileRepository(path string, logger *zap.Logger) *FileRepository {
	return &FileRepository{
		path:   path,
		logger: logger,
	}
}

var _ repository.MetadataRepository = (*FileRepository)(nil)

// Load читает снимок; (nil, nil) если файла ещё нет
func (r *FileRepository) Load() (*domain.MetadataSnapshot, error) {
	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}

	var snapshot domain.MetadataSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("parse metadata file %s: %w", r.path, err)
	}

	r.logger.Debug("Loaded metadata snapshot",
		zap.String("path", r.path),
		zap.Int("indicators", len(snapshot.Indicators)))

	return &snapshot, nil
}

// Save атомарно записывает снимок: во временный файл рядом, затем rename
func (r *FileRepository) Save(snapshot *domain.MetadataSnapshot) error {
	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata snapshot: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create metadata dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".metadata-*.json")
	if err != nil {
		return fmt.Errorf("create temp metadata file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write metadata file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close metadata file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace metadata file: %w", err)
	}

	r.logger.Info("Saved metadata snapshot",
		zap.String("path", r.path),
		zap.Int("indicators", len(snapshot.Indicators)))

	return nil
}
