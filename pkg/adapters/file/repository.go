package file

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
)

const ext = ".json"

// Repository implements ports.SessionRepository using the local filesystem.
// Each session is one JSON snapshot file in BasePath.
type Repository struct {
	BasePath string
}

// New creates a Repository rooted at basePath.
// If basePath is empty, it defaults to ".switchboard/sessions".
func New(basePath string) *Repository {
	if basePath == "" {
		basePath = filepath.Join(".switchboard", "sessions")
	}
	return &Repository{BasePath: basePath}
}

// fileName encodes the session ID so arbitrary IDs map to safe, reversible names.
func fileName(id domain.SessionID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id)) + ext
}

func (r *Repository) path(id domain.SessionID) string {
	return filepath.Join(r.BasePath, fileName(id))
}

// Save persists the session snapshot atomically:
// temp file in the same directory, fsync, then rename over the destination.
func (r *Repository) Save(ctx context.Context, session *domain.AgentSession) error {
	if err := os.MkdirAll(r.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	data, err := json.MarshalIndent(session.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmpFile, err := os.CreateTemp(r.BasePath, "tmp-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Rename replaces the destination in one step; readers see the old or the new file.
	if err := os.Rename(tmpPath, r.path(session.ID())); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// FindByID reads and restores a session.
func (r *Repository) FindByID(ctx context.Context, id domain.SessionID) (*domain.AgentSession, error) {
	data, err := os.ReadFile(r.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var snap domain.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSnapshot, err)
	}
	return domain.RestoreSession(snap)
}

// Delete removes the session file. Absent sessions are not an error.
func (r *Repository) Delete(ctx context.Context, id domain.SessionID) error {
	err := os.Remove(r.path(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns stored session IDs in lexical order.
func (r *Repository) List(ctx context.Context) ([]domain.SessionID, error) {
	entries, err := os.ReadDir(r.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.SessionID{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	ids := make([]domain.SessionID, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) || strings.HasPrefix(name, "tmp-") {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSuffix(name, ext))
		if err != nil {
			continue
		}
		ids = append(ids, domain.SessionID(raw))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
