package models

import "time"

// Phase identifies the stage of a submission attempt an audit event belongs to.
type Phase string

const (
	PhaseAttempt      Phase = "ATTEMPT"
	PhaseSuccess      Phase = "SUCCESS"
	PhaseError        Phase = "ERROR"
	PhaseNetworkError Phase = "NETWORK_ERROR"
)

// SubmissionEvent is one immutable audit record. Events are one-per-phase,
// not one-per-request: a single attempt produces an ATTEMPT event and then a
// terminal SUCCESS or ERROR event. The attempt id ties the two together even
// when validation fails before a request id exists.
type SubmissionEvent struct {
	Timestamp       time.Time         `json:"timestamp"`
	AttemptID       string            `json:"attempt_id"`
	Phase           Phase             `json:"phase"`
	RequestID       string            `json:"request_id,omitempty"`
	Fields          map[string]string `json:"fields"`
	AttachmentNames []string          `json:"attachment_names,omitempty"`
	ElapsedMS       int64             `json:"elapsed_ms"`
	Status          string            `json:"status"`
	ErrorMessage    string            `json:"error_message,omitempty"`
}
