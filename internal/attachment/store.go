// Package attachment persists uploaded files under deterministic,
// request-id-derived names.
package attachment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qqbek24/transport-request-form-app/internal/models"
)

// ErrAlreadyExists is returned when the target filename is already taken.
// Names derive from request ids, so a collision means an id was reused and
// the store refuses to overwrite.
var ErrAlreadyExists = errors.New("attachment already exists")

// Store writes attachments into a flat directory as
// attachment_{request_id}{.ext}. Writes go through a temporary file and a
// rename so a reader never observes a truncated attachment.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created lazily
// on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory attachments are written to.
func (s *Store) Dir() string { return s.dir }

// Save writes the attachment for the given request id and returns the
// stored filename. The extension is taken from the uploaded filename.
func (s *Store) Save(requestID string, att models.Attachment) (string, error) {
	name := FileName(requestID, att.Filename)
	finalPath := filepath.Join(s.dir, name)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create attachments directory: %w", err)
	}

	if _, err := os.Stat(finalPath); err == nil {
		return "", fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check attachment path: %w", err)
	}

	tmpPath := filepath.Join(s.dir, "temp_"+name)
	if err := os.WriteFile(tmpPath, att.Data, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to finalize attachment: %w", err)
	}

	return name, nil
}

// Remove deletes a stored attachment by name. Removing a name that does not
// exist is not an error; compensating cleanup may race a write that never
// happened.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove attachment: %w", err)
	}
	return nil
}

// FileName derives the stored name for a request id and an uploaded
// filename, preserving the upload's extension.
func FileName(requestID, uploadedName string) string {
	ext := strings.ToLower(filepath.Ext(uploadedName))
	return fmt.Sprintf("attachment_%s%s", requestID, ext)
}
