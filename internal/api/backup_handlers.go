package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tickstack/tickstack-server/internal/backup"
	"github.com/tickstack/tickstack-server/internal/http/response"
)

// handleListBackups returns all database snapshots on disk.
func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.backups.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list backups", s.logger)
		return
	}

	response.Success(w, backups, s.logger)
}

// handleCreateBackup writes a new snapshot of the full database.
func (s *Server) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	result, err := s.backups.Create(r.Context())
	if err != nil {
		s.logger.Error("Backup failed", "error", err)
		response.InternalError(w, "Failed to create backup", s.logger)
		return
	}

	response.Created(w, result, s.logger)
}

// handleGetBackup returns details for one snapshot.
func (s *Server) handleGetBackup(w http.ResponseWriter, r *http.Request) {
	backupID := chi.URLParam(r, "backupID")

	info, err := s.backups.Get(r.Context(), backupID)
	if err != nil {
		if errors.Is(err, backup.ErrBackupNotFound) {
			response.NotFound(w, "Backup not found", s.logger)
			return
		}
		response.InternalError(w, "Failed to read backup", s.logger)
		return
	}

	response.Success(w, info, s.logger)
}

// handleDeleteBackup removes a snapshot from disk.
func (s *Server) handleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	backupID := chi.URLParam(r, "backupID")

	if err := s.backups.Delete(r.Context(), backupID); err != nil {
		if errors.Is(err, backup.ErrBackupNotFound) {
			response.NotFound(w, "Backup not found", s.logger)
			return
		}
		response.InternalError(w, "Failed to delete backup", s.logger)
		return
	}

	response.NoContent(w)
}
