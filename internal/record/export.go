package record

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ExportSQLite mirrors the full record store into a sqlite table keyed by
// request_id — the tabular copy of the document-oriented store. The export
// is idempotent: re-running it refreshes existing rows instead of
// duplicating them. Returns the number of exported records.
//
// The export runs off the submission path; it reads a snapshot and never
// blocks appends for longer than one bbolt view transaction.
func (s *Store) ExportSQLite(path string) (int, error) {
	requests, err := s.ListAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read records for export: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return 0, fmt.Errorf("failed to open export database: %w", err)
	}
	defer db.Close()

	const schema = `
		CREATE TABLE IF NOT EXISTS transport_requests (
			request_id             TEXT PRIMARY KEY,
			timestamp              TEXT NOT NULL,
			delivery_note_number   TEXT NOT NULL,
			truck_license_plates   TEXT NOT NULL,
			trailer_license_plates TEXT NOT NULL,
			carrier_country        TEXT NOT NULL,
			carrier_tax_code       TEXT NOT NULL,
			carrier_full_name      TEXT NOT NULL,
			border_crossing        TEXT NOT NULL,
			border_crossing_date   TEXT NOT NULL,
			has_attachment         INTEGER NOT NULL,
			attachment_ref         TEXT
		)`
	if _, err := db.Exec(schema); err != nil {
		return 0, fmt.Errorf("failed to create export table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin export transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO transport_requests (
			request_id, timestamp, delivery_note_number, truck_license_plates,
			trailer_license_plates, carrier_country, carrier_tax_code,
			carrier_full_name, border_crossing, border_crossing_date,
			has_attachment, attachment_ref
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare export statement: %w", err)
	}
	defer stmt.Close()

	for _, req := range requests {
		hasAttachment := 0
		if req.HasAttachment {
			hasAttachment = 1
		}
		_, err := stmt.Exec(
			req.RequestID,
			req.Timestamp.Format(time.RFC3339),
			req.DeliveryNoteNumber,
			req.TruckLicensePlates,
			req.TrailerLicensePlates,
			req.CarrierCountry,
			req.CarrierTaxCode,
			req.CarrierFullName,
			req.BorderCrossing,
			req.BorderCrossingDate,
			hasAttachment,
			req.AttachmentRef,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to export record %s: %w", req.RequestID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit export: %w", err)
	}

	return len(requests), nil
}
