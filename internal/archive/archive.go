package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/config"
)

// Store persists one JSON artifact per scoring run under
// runs/{accountID}/{date}/{runID}.json, on local disk or in S3
// depending on configuration.
type Store struct {
	config config.StorageConfig

	// AWS backend (optional)
	aws *S3Store
}

// New creates a Store for the configured backend.
func New(cfg config.StorageConfig) (*Store, error) {
	s := &Store{config: cfg}

	ctx := context.Background()

	switch cfg.Type {
	case "aws":
		awsStore, err := NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.GetAWSProfile())
		if err != nil {
			return nil, fmt.Errorf("initializing S3 archive: %w", err)
		}
		s.aws = awsStore

	case "local":
		if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}

	return s, nil
}

// SaveRunArtifact writes the run payload and returns where it landed.
// A zero generatedAt files the artifact under today's date.
func (s *Store) SaveRunArtifact(ctx context.Context, accountID, runID string, generatedAt time.Time, payload interface{}) (string, error) {
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	day := generatedAt.UTC().Format("2006-01-02")

	switch s.config.Type {
	case "aws":
		key := fmt.Sprintf("runs/%s/%s/%s.json", accountID, day, runID)
		if err := s.aws.PutJSON(ctx, key, payload); err != nil {
			return "", err
		}
		return fmt.Sprintf("s3://%s/%s", s.config.S3Bucket, key), nil

	default:
		path := filepath.Join(s.config.LocalPath, "runs", filepath.Base(accountID), day, filepath.Base(runID)+".json")
		if err := saveToFile(path, payload); err != nil {
			return "", err
		}
		return path, nil
	}
}

// saveToFile writes payload as indented JSON, creating parent
// directories as needed.
func saveToFile(path string, payload interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating artifact file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}

	return nil
}
