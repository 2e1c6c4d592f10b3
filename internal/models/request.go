// Package models defines the data types shared across the intake pipeline.
package models

import "time"

// Request represents one validated transport-crossing request. A Request is
// written to the record store exactly once and never mutated afterwards;
// corrections arrive as new submissions.
type Request struct {
	RequestID            string    `json:"request_id"`
	Timestamp            time.Time `json:"timestamp"`
	DeliveryNoteNumber   string    `json:"delivery_note_number"`
	TruckLicensePlates   string    `json:"truck_license_plates"`
	TrailerLicensePlates string    `json:"trailer_license_plates"`
	CarrierCountry       string    `json:"carrier_country"`
	CarrierTaxCode       string    `json:"carrier_tax_code"`
	CarrierFullName      string    `json:"carrier_full_name"`
	BorderCrossing       string    `json:"border_crossing"`
	BorderCrossingDate   string    `json:"border_crossing_date"` // YYYY-MM-DD
	HasAttachment        bool      `json:"has_attachment"`
	AttachmentRef        string    `json:"attachment_ref,omitempty"`
}

// Form field keys accepted by the validator.
const (
	FieldDeliveryNoteNumber   = "delivery_note_number"
	FieldTruckLicensePlates   = "truck_license_plates"
	FieldTrailerLicensePlates = "trailer_license_plates"
	FieldCarrierCountry       = "carrier_country"
	FieldCarrierTaxCode       = "carrier_tax_code"
	FieldCarrierFullName      = "carrier_full_name"
	FieldBorderCrossing       = "border_crossing"
	FieldBorderCrossingDate   = "border_crossing_date"
)

// Attachment is an uploaded file as received at the boundary, before any
// persistence decision has been made.
type Attachment struct {
	Filename string
	MIMEType string
	Data     []byte
}
