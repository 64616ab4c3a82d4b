package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adpilot/meta-ads-monitor/internal/config"
)

func newTestStore(t *testing.T) *Store {
	cfg := config.StorageConfig{
		Type:      "local",
		LocalPath: t.TempDir(),
	}

	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.StorageConfig{Type: "dynamo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}

func TestSaveRunArtifactLocal(t *testing.T) {
	s := newTestStore(t)

	generatedAt := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	payload := map[string]interface{}{
		"run_id": "run-1",
		"score":  88.5,
	}

	location, err := s.SaveRunArtifact(context.Background(), "101", "run-1", generatedAt, payload)
	require.NoError(t, err)

	want := filepath.Join(s.config.LocalPath, "runs", "101", "2025-06-10", "run-1.json")
	assert.Equal(t, want, location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, 88.5, got["score"])
}

func TestSaveRunArtifactZeroTimeUsesToday(t *testing.T) {
	s := newTestStore(t)

	location, err := s.SaveRunArtifact(context.Background(), "101", "run-2", time.Time{}, map[string]string{"k": "v"})
	require.NoError(t, err)

	day := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, filepath.Join(s.config.LocalPath, "runs", "101", day, "run-2.json"), location)
}

func TestSaveRunArtifactOverwritesSameRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	generatedAt := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)

	_, err := s.SaveRunArtifact(ctx, "101", "run-3", generatedAt, map[string]int{"attempt": 1})
	require.NoError(t, err)

	location, err := s.SaveRunArtifact(ctx, "101", "run-3", generatedAt, map[string]int{"attempt": 2})
	require.NoError(t, err)

	data, err := os.ReadFile(location)
	require.NoError(t, err)

	var got map[string]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 2, got["attempt"])
}

func TestSaveRunArtifactSanitizesPathParts(t *testing.T) {
	s := newTestStore(t)

	location, err := s.SaveRunArtifact(context.Background(), "../escape", "run-4", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), map[string]string{})
	require.NoError(t, err)

	rel, err := filepath.Rel(s.config.LocalPath, location)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("runs", "escape", "2025-06-10", "run-4.json"), rel)
}
