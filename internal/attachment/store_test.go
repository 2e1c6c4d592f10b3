package attachment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qqbek24/transport-request-form-app/internal/models"
)

func testAttachment() models.Attachment {
	return models.Attachment{
		Filename: "delivery_note.pdf",
		MIMEType: "application/pdf",
		Data:     []byte("%PDF-1.4 test content"),
	}
}

func TestSave(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "attachments"))

	name, err := s.Save("REQ-20251022-143005-000", testAttachment())
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if name != "attachment_REQ-20251022-143005-000.pdf" {
		t.Errorf("Save() name = %q, expected deterministic attachment name", name)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	if err != nil {
		t.Fatalf("stored file not readable: %v", err)
	}
	if string(data) != "%PDF-1.4 test content" {
		t.Errorf("stored content = %q, does not match upload", data)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "attachments")
	s := NewStore(dir)

	if _, err := s.Save("REQ-20251022-143005-001", testAttachment()); err != nil {
		t.Fatalf("Save() into missing directory: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("attachments directory was not created: %v", err)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	s := NewStore(t.TempDir())

	if _, err := s.Save("REQ-20251022-143005-002", testAttachment()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory holds %d files, expected 1: %v", len(entries), names)
	}
}

func TestSaveRejectsCollision(t *testing.T) {
	s := NewStore(t.TempDir())
	const id = "REQ-20251022-143005-003"

	if _, err := s.Save(id, testAttachment()); err != nil {
		t.Fatalf("first Save() error: %v", err)
	}

	_, err := s.Save(id, testAttachment())
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("second Save() error = %v, expected ErrAlreadyExists", err)
	}
}

func TestRemove(t *testing.T) {
	s := NewStore(t.TempDir())

	name, err := s.Save("REQ-20251022-143005-004", testAttachment())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(name); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), name)); !os.IsNotExist(err) {
		t.Errorf("attachment still exists after Remove()")
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Remove("attachment_REQ-20990101-000000-000.pdf"); err != nil {
		t.Errorf("Remove() of missing file: %v", err)
	}
	if err := s.Remove(""); err != nil {
		t.Errorf("Remove() of empty name: %v", err)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		uploaded string
		expected string
	}{
		{"scan.PDF", "attachment_REQ-X.pdf"},
		{"photo.jpeg", "attachment_REQ-X.jpeg"},
		{"noext", "attachment_REQ-X"},
	}

	for _, tt := range tests {
		t.Run(tt.uploaded, func(t *testing.T) {
			if got := FileName("REQ-X", tt.uploaded); got != tt.expected {
				t.Errorf("FileName(%q) = %q, expected %q", tt.uploaded, got, tt.expected)
			}
		})
	}
}
