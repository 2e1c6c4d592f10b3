// Package intake sequences validation, identifier assignment and
// persistence for one submission, and guarantees that a failed attempt
// leaves no persisted artifact behind.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qqbek24/transport-request-form-app/internal/attachment"
	"github.com/qqbek24/transport-request-form-app/internal/audit"
	"github.com/qqbek24/transport-request-form-app/internal/models"
	"github.com/qqbek24/transport-request-form-app/internal/record"
	"github.com/qqbek24/transport-request-form-app/internal/requestid"
	"github.com/qqbek24/transport-request-form-app/internal/validation"
)

// State names the stages of one submission attempt.
type State string

const (
	StateReceived            State = "RECEIVED"
	StateValidated           State = "VALIDATED"
	StateIDAssigned          State = "ID_ASSIGNED"
	StateAttachmentPersisted State = "ATTACHMENT_PERSISTED"
	StateRecordPersisted     State = "RECORD_PERSISTED"
	StateLoggedSuccess       State = "LOGGED_SUCCESS"
	StateLoggedError         State = "LOGGED_ERROR"
)

// Result is returned to the caller only when an attempt reached
// LOGGED_SUCCESS.
type Result struct {
	RequestID       string
	AttachmentSaved bool
	Elapsed         time.Duration
}

// Service is the intake orchestrator. Each Submit call is an independent
// attempt: a fresh request id is generated every time, so retrying a failed
// call is always safe and two identical payloads produce two records.
type Service struct {
	validator      *validation.Validator
	ids            *requestid.Generator
	attachments    *attachment.Store
	records        *record.Store
	audit          *audit.Logger
	log            *slog.Logger
	storageTimeout time.Duration
	now            func() time.Time
}

// Options wires the orchestrator's collaborators.
type Options struct {
	Validator   *validation.Validator
	IDs         *requestid.Generator
	Attachments *attachment.Store
	Records     *record.Store
	Audit       *audit.Logger
	Log         *slog.Logger
	// StorageTimeout bounds each attachment and record write. Zero means
	// 10 seconds.
	StorageTimeout time.Duration
	// Now is the clock; nil means time.Now. Injected for tests.
	Now func() time.Time
}

// New creates the orchestrator.
func New(opts Options) *Service {
	s := &Service{
		validator:      opts.Validator,
		ids:            opts.IDs,
		attachments:    opts.Attachments,
		records:        opts.Records,
		audit:          opts.Audit,
		log:            opts.Log,
		storageTimeout: opts.StorageTimeout,
		now:            opts.Now,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.storageTimeout <= 0 {
		s.storageTimeout = 10 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Submit runs one attempt through the pipeline. On success it returns the
// assigned request id; on failure it returns *models.ValidationError,
// *models.StorageError or *models.ConsistencyError and guarantees that no
// record and no attachment written for this attempt survives.
func (s *Service) Submit(ctx context.Context, fields map[string]string, atts []models.Attachment) (*Result, error) {
	start := s.now()
	attemptID := audit.NewAttemptID()

	names := make([]string, len(atts))
	for i, att := range atts {
		names[i] = att.Filename
	}

	// The raw attempt is logged before validation so every submission is
	// reconstructable from the audit log alone.
	s.audit.Record(models.SubmissionEvent{
		Timestamp:       start,
		AttemptID:       attemptID,
		Phase:           models.PhaseAttempt,
		Fields:          fields,
		AttachmentNames: names,
		Status:          "PROCESSING",
	})

	req, verr := s.validator.Validate(fields, atts, start)
	if verr != nil {
		s.logError(attemptID, "", fields, names, start, StateReceived, models.FailureValidation, verr)
		return nil, verr
	}

	req.RequestID = s.ids.Next()

	// Persist the first attachment only; the boundary may accept more but
	// the pipeline stores one file per request.
	if len(atts) > 0 {
		name, err := s.saveAttachment(ctx, req.RequestID, atts[0])
		if err != nil {
			kind := models.FailureStorage
			if errors.Is(err, attachment.ErrAlreadyExists) {
				kind = models.FailureInternal
			}
			s.logError(attemptID, req.RequestID, fields, names, start, StateIDAssigned, kind, err)
			if kind == models.FailureInternal {
				return nil, &models.ConsistencyError{RequestID: req.RequestID, Err: err}
			}
			return nil, &models.StorageError{Op: "attachment write", Err: err}
		}
		req.HasAttachment = true
		req.AttachmentRef = name
	}

	if err := s.appendRecord(ctx, req); err != nil {
		// Compensating cleanup: a failed append must not leave an
		// orphaned attachment behind.
		if req.AttachmentRef != "" {
			if rmErr := s.attachments.Remove(req.AttachmentRef); rmErr != nil {
				s.log.Error("compensating attachment cleanup failed",
					"request_id", req.RequestID,
					"attachment_ref", req.AttachmentRef,
					"error", rmErr,
				)
			}
		}

		furthest := StateIDAssigned
		if req.HasAttachment {
			furthest = StateAttachmentPersisted
		}
		kind := models.FailureStorage
		if errors.Is(err, record.ErrDuplicateID) {
			kind = models.FailureInternal
		}
		s.logError(attemptID, req.RequestID, fields, names, start, furthest, kind, err)
		if kind == models.FailureInternal {
			return nil, &models.ConsistencyError{RequestID: req.RequestID, Err: err}
		}
		return nil, &models.StorageError{Op: "record append", Err: err}
	}

	elapsed := s.now().Sub(start)
	s.audit.Record(models.SubmissionEvent{
		Timestamp:       s.now(),
		AttemptID:       attemptID,
		Phase:           models.PhaseSuccess,
		RequestID:       req.RequestID,
		Fields:          fields,
		AttachmentNames: names,
		ElapsedMS:       elapsed.Milliseconds(),
		Status:          "SUCCESS",
	})
	s.log.Info("submission accepted",
		"request_id", req.RequestID,
		"attempt_id", attemptID,
		"has_attachment", req.HasAttachment,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return &Result{
		RequestID:       req.RequestID,
		AttachmentSaved: req.HasAttachment,
		Elapsed:         elapsed,
	}, nil
}

func (s *Service) saveAttachment(ctx context.Context, requestID string, att models.Attachment) (string, error) {
	var name string
	err := s.withTimeout(ctx, func() error {
		var err error
		name, err = s.attachments.Save(requestID, att)
		return err
	}, func(late error) {
		if late != nil {
			return
		}
		// The save finished after the attempt was already reported
		// failed; remove the file it left behind.
		if rmErr := s.attachments.Remove(attachment.FileName(requestID, att.Filename)); rmErr != nil {
			s.log.Error("late attachment cleanup failed",
				"request_id", requestID,
				"error", rmErr,
			)
		}
	})
	return name, err
}

func (s *Service) appendRecord(ctx context.Context, req *models.Request) error {
	return s.withTimeout(ctx, func() error {
		return s.records.Append(req)
	}, func(late error) {
		if late != nil {
			return
		}
		if delErr := s.records.Delete(req.RequestID); delErr != nil {
			s.log.Error("late record cleanup failed",
				"request_id", req.RequestID,
				"error", delErr,
			)
		}
	})
}

// withTimeout bounds a storage call. A timeout surfaces as an ordinary
// storage error. Storage writes cannot be cancelled mid-flight, so on
// timeout withTimeout waits for the abandoned call to settle and hands its
// outcome to onLate, which must undo anything the late write persisted —
// a failed attempt leaves no artifact behind, including one that landed
// after the deadline.
func (s *Service) withTimeout(ctx context.Context, fn func() error, onLate func(error)) error {
	ctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		err := <-done
		if onLate != nil {
			onLate(err)
		}
		return fmt.Errorf("storage operation aborted: %w", ctx.Err())
	}
}

func (s *Service) logError(attemptID, requestID string, fields map[string]string, names []string, start time.Time, furthest State, kind models.FailureKind, cause error) {
	s.audit.Record(models.SubmissionEvent{
		Timestamp:       s.now(),
		AttemptID:       attemptID,
		Phase:           models.PhaseError,
		RequestID:       requestID,
		Fields:          fields,
		AttachmentNames: names,
		ElapsedMS:       s.now().Sub(start).Milliseconds(),
		Status:          string(kind),
		ErrorMessage:    cause.Error(),
	})
	s.log.Error("submission failed",
		"attempt_id", attemptID,
		"request_id", requestID,
		"failure_kind", string(kind),
		"furthest_state", string(furthest),
		"error", cause,
	)
}
