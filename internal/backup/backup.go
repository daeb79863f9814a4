// Package backup creates and manages snapshots of the checklist
// database. Snapshots use Badger's native backup stream format, so a
// restore replays the exact document and counter state at backup time.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tickstack/tickstack-server/internal/store"
)

// backupSuffix is the file extension for snapshot files on disk.
const backupSuffix = ".tickstack.bak"

// Info describes a single snapshot on disk.
type Info struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is returned from Create with details of the written snapshot.
type Result struct {
	Info
	Version  uint64        `json:"version"`
	Duration time.Duration `json:"duration,format:nano"`
}

// Service manages snapshot creation, listing and restore.
type Service struct {
	store     *store.Store
	backupDir string
	logger    *slog.Logger
}

// NewService creates a Service writing snapshots under backupDir.
func NewService(s *store.Store, backupDir string, logger *slog.Logger) *Service {
	return &Service{
		store:     s,
		backupDir: backupDir,
		logger:    logger,
	}
}

// Create writes a new snapshot of the full database and returns its
// details. The snapshot ID is derived from the creation timestamp.
func (s *Service) Create(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	id := "backup-" + time.Now().Format("2006-01-02-150405")
	path := filepath.Join(s.backupDir, id+backupSuffix)

	s.logger.Info("creating backup", "path", path)
	start := time.Now()

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}

	version, err := s.store.Backup(f)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write backup stream: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close backup file: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Info: Info{
			ID:        id,
			Path:      path,
			Size:      stat.Size(),
			CreatedAt: stat.ModTime(),
		},
		Version:  version,
		Duration: time.Since(start),
	}

	s.logger.Info("backup complete",
		"path", result.Path,
		"size", result.Size,
		"duration", result.Duration)

	return result, nil
}

// snapshotPath resolves a snapshot ID to its on-disk path. IDs come in
// from URL parameters, so anything that could traverse out of the backup
// directory is treated as nonexistent.
func (s *Service) snapshotPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", ErrBackupNotFound
	}
	return filepath.Join(s.backupDir, id+backupSuffix), nil
}

// List returns all available snapshots, newest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), backupSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, Info{
			ID:        strings.TrimSuffix(entry.Name(), backupSuffix),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Get returns a snapshot by ID.
func (s *Service) Get(ctx context.Context, id string) (*Info, error) {
	path, err := s.snapshotPath(id)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &Info{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes a snapshot from disk.
func (s *Service) Delete(ctx context.Context, id string) error {
	path, err := s.snapshotPath(id)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}

	return os.Remove(path)
}

// Restore loads a snapshot into the database. Entries replay at their
// original versions, so this is meant for an empty database (a fresh
// data directory); writes made after the snapshot can shadow restored
// keys.
func (s *Service) Restore(ctx context.Context, id string) error {
	path, err := s.snapshotPath(id)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}
	defer f.Close()

	s.logger.Info("restoring backup", "path", path)
	if err := s.store.Restore(f); err != nil {
		return fmt.Errorf("load backup stream: %w", err)
	}
	s.logger.Info("restore complete", "path", path)

	return nil
}
