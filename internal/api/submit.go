// Package api exposes the intake pipeline over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/qqbek24/transport-request-form-app/internal/audit"
	"github.com/qqbek24/transport-request-form-app/internal/intake"
	"github.com/qqbek24/transport-request-form-app/internal/models"
	"github.com/qqbek24/transport-request-form-app/internal/record"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing; larger
// bodies spill to temp files.
const maxMultipartMemory = 32 << 20

// SubmitHandler handles transport request submissions.
type SubmitHandler struct {
	service *intake.Service
	audit   *audit.Logger
	log     *slog.Logger
}

// NewSubmitHandler creates a SubmitHandler. The audit logger captures
// payloads that are rejected before they reach the pipeline.
func NewSubmitHandler(service *intake.Service, auditLog *audit.Logger, log *slog.Logger) *SubmitHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SubmitHandler{service: service, audit: auditLog, log: log}
}

// submitResponse is the success payload for POST /api/submit.
type submitResponse struct {
	Success          bool   `json:"success"`
	RequestID        string `json:"request_id"`
	AttachmentSaved  bool   `json:"attachment_saved"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
}

// Submit handles POST /api/submit. The body is a multipart form with a
// "data" field carrying the request fields as JSON and zero or more
// "attachment" file parts.
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.rejectMalformed(w, "", "Failed to parse multipart form")
		return
	}

	data := r.FormValue("data")
	if data == "" {
		h.rejectMalformed(w, "", "Missing data field")
		return
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		h.rejectMalformed(w, data, "Invalid JSON in data field")
		return
	}

	var atts []models.Attachment
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["attachment"] {
			att, err := readAttachment(header)
			if err != nil {
				h.rejectMalformed(w, data, "Failed to read attachment")
				return
			}
			atts = append(atts, att)
		}
	}

	result, err := h.service.Submit(r.Context(), fields, atts)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		// Storage and consistency failures surface as a generic error;
		// detail is in the audit log.
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to process submission")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(submitResponse{
		Success:          true,
		RequestID:        result.RequestID,
		AttachmentSaved:  result.AttachmentSaved,
		ProcessingTimeMS: result.Elapsed.Milliseconds(),
	})
}

// rejectMalformed rejects a payload that never made it to the pipeline and
// records the raw data snapshot, so even an unparseable attempt can be
// reconstructed from the audit log.
func (h *SubmitHandler) rejectMalformed(w http.ResponseWriter, rawData, description string) {
	h.audit.Record(models.SubmissionEvent{
		AttemptID:    audit.NewAttemptID(),
		Phase:        models.PhaseError,
		Fields:       map[string]string{"raw_data": rawData},
		Status:       string(models.FailureValidation),
		ErrorMessage: description,
	})
	writeJSONError(w, http.StatusBadRequest, "invalid_request", description)
}

func readAttachment(header *multipart.FileHeader) (models.Attachment, error) {
	f, err := header.Open()
	if err != nil {
		return models.Attachment{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.Attachment{}, err
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return models.Attachment{
		Filename: header.Filename,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

// ListHandler serves the read path over the record store.
type ListHandler struct {
	records *record.Store
	log     *slog.Logger
}

// NewListHandler creates a ListHandler.
func NewListHandler(records *record.Store, log *slog.Logger) *ListHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ListHandler{records: records, log: log}
}

// List handles GET /api/requests.
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.records.ListAll()
	if err != nil {
		h.log.Error("failed to list requests", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to list requests")
		return
	}
	if requests == nil {
		requests = []*models.Request{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "transport-api",
	})
}
