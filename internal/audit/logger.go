// Package audit writes the append-only submission log: one event per
// attempt phase, partitioned by calendar day, as JSONL with a CSV mirror
// for spreadsheet analysis.
//
// The audit log is deliberately independent of the record store. An ATTEMPT
// event is written before validation runs, so every submission can be
// reconstructed from the log even if the pipeline crashed between phases.
package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qqbek24/transport-request-form-app/internal/models"
)

const appName = "transport_app"

var csvHeader = []string{
	"timestamp", "attempt_id", "phase", "request_id", "status",
	"delivery_note_number", "truck_license_plates", "trailer_license_plates",
	"carrier_country", "carrier_tax_code", "carrier_full_name",
	"border_crossing", "border_crossing_date",
	"attachment_names", "elapsed_ms", "error_message",
}

// Logger appends submission events to daily log partitions. Record never
// returns an error: a failing audit write must not reject an otherwise
// successful submission, so failures are reported on the operational logger
// and swallowed.
type Logger struct {
	mu  sync.Mutex
	dir string
	log *slog.Logger
	now func() time.Time
}

// New creates a Logger writing into dir. The slog logger is the
// operational channel for the logger's own failures.
func New(dir string, log *slog.Logger) *Logger {
	return NewWithClock(dir, log, time.Now)
}

// NewWithClock creates a Logger with an injected clock, so tests control
// the partition an event lands in.
func NewWithClock(dir string, log *slog.Logger, now func() time.Time) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{dir: dir, log: log, now: now}
}

// NewAttemptID returns a fresh attempt identifier. Attempt ids exist
// independently of request ids: an ATTEMPT event is logged before any
// request id has been assigned.
func NewAttemptID() string {
	return uuid.NewString()
}

// Record appends one event to today's JSONL partition and its CSV mirror.
func (l *Logger) Record(ev models.SubmissionEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		l.report("create log directory", err, ev)
		return
	}

	day := ev.Timestamp.Format("20060102")
	if err := l.appendJSONL(day, ev); err != nil {
		l.report("append jsonl event", err, ev)
	}
	if err := l.appendCSV(day, ev); err != nil {
		l.report("append csv event", err, ev)
	}
}

func (l *Logger) appendJSONL(day string, ev models.SubmissionEvent) error {
	path := filepath.Join(l.dir, fmt.Sprintf("%s_%s.jsonl", appName, day))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	if _, err := f.Write(line); err != nil {
		return err
	}
	return f.Sync()
}

func (l *Logger) appendCSV(day string, ev models.SubmissionEvent) error {
	path := filepath.Join(l.dir, fmt.Sprintf("form_submissions_%s.csv", day))

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}

	attachments := ""
	for i, name := range ev.AttachmentNames {
		if i > 0 {
			attachments += ";"
		}
		attachments += name
	}

	row := []string{
		ev.Timestamp.Format(time.RFC3339),
		ev.AttemptID,
		string(ev.Phase),
		ev.RequestID,
		ev.Status,
		ev.Fields[models.FieldDeliveryNoteNumber],
		ev.Fields[models.FieldTruckLicensePlates],
		ev.Fields[models.FieldTrailerLicensePlates],
		ev.Fields[models.FieldCarrierCountry],
		ev.Fields[models.FieldCarrierTaxCode],
		ev.Fields[models.FieldCarrierFullName],
		ev.Fields[models.FieldBorderCrossing],
		ev.Fields[models.FieldBorderCrossingDate],
		attachments,
		strconv.FormatInt(ev.ElapsedMS, 10),
		ev.ErrorMessage,
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (l *Logger) report(op string, err error, ev models.SubmissionEvent) {
	l.log.Error("audit log write failed",
		"op", op,
		"error", err,
		"attempt_id", ev.AttemptID,
		"phase", ev.Phase,
		"request_id", ev.RequestID,
	)
}
