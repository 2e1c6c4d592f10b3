// Package validation checks incoming submission payloads against the
// request schema and the configured reference data.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/qqbek24/transport-request-form-app/internal/models"
)

const dateLayout = "2006-01-02"

// allowedMIMETypes lists the attachment content types the pipeline persists.
var allowedMIMETypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// requiredFields in the order they are reported when missing.
var requiredFields = []string{
	models.FieldDeliveryNoteNumber,
	models.FieldTruckLicensePlates,
	models.FieldTrailerLicensePlates,
	models.FieldCarrierCountry,
	models.FieldCarrierTaxCode,
	models.FieldCarrierFullName,
	models.FieldBorderCrossing,
	models.FieldBorderCrossingDate,
}

// Validator validates raw field maps into Request values. It holds no
// mutable state and is safe for concurrent use.
type Validator struct {
	countries      map[string]struct{}
	crossings      map[string]struct{}
	maxBytes       int64
	maxAttachments int
}

// Options configures validation limits.
type Options struct {
	// MaxAttachmentBytes caps the size of a single attachment. Zero means
	// the 10 MB default.
	MaxAttachmentBytes int64
	// MaxAttachments caps how many files one submission may carry. Zero
	// means 1.
	MaxAttachments int
}

// New creates a Validator over the given reference lists.
func New(countries, crossings []string, opts Options) *Validator {
	v := &Validator{
		countries:      make(map[string]struct{}, len(countries)),
		crossings:      make(map[string]struct{}, len(crossings)),
		maxBytes:       opts.MaxAttachmentBytes,
		maxAttachments: opts.MaxAttachments,
	}
	if v.maxBytes <= 0 {
		v.maxBytes = 10 << 20
	}
	if v.maxAttachments <= 0 {
		v.maxAttachments = 1
	}
	for _, c := range countries {
		v.countries[c] = struct{}{}
	}
	for _, c := range crossings {
		v.crossings[c] = struct{}{}
	}
	return v
}

// Validate checks fields and attachments and returns a normalized Request
// with its timestamp set to now. The request id is left empty; assigning it
// is the orchestrator's job. On failure the returned ValidationError
// enumerates every offending field, not just the first.
func (v *Validator) Validate(fields map[string]string, atts []models.Attachment, now time.Time) (*models.Request, *models.ValidationError) {
	var errs []models.FieldError

	trimmed := make(map[string]string, len(requiredFields))
	for _, name := range requiredFields {
		value := strings.TrimSpace(fields[name])
		if value == "" {
			errs = append(errs, models.FieldError{Field: name, Reason: "required field is missing or empty"})
			continue
		}
		trimmed[name] = value
	}

	if value, ok := trimmed[models.FieldCarrierCountry]; ok {
		if _, known := v.countries[value]; !known {
			errs = append(errs, models.FieldError{
				Field:  models.FieldCarrierCountry,
				Reason: fmt.Sprintf("%q is not a known country", value),
			})
		}
	}

	if value, ok := trimmed[models.FieldBorderCrossing]; ok {
		if _, known := v.crossings[value]; !known {
			errs = append(errs, models.FieldError{
				Field:  models.FieldBorderCrossing,
				Reason: fmt.Sprintf("%q is not a known border crossing", value),
			})
		}
	}

	if value, ok := trimmed[models.FieldBorderCrossingDate]; ok {
		// Historical dates are accepted: the pipeline records crossings
		// that happened, not bookings.
		if _, err := time.Parse(dateLayout, value); err != nil {
			errs = append(errs, models.FieldError{
				Field:  models.FieldBorderCrossingDate,
				Reason: fmt.Sprintf("%q is not a valid date (expected %s)", value, dateLayout),
			})
		}
	}

	errs = append(errs, v.validateAttachments(atts)...)

	if len(errs) > 0 {
		return nil, &models.ValidationError{Fields: errs}
	}

	return &models.Request{
		Timestamp:            now,
		DeliveryNoteNumber:   trimmed[models.FieldDeliveryNoteNumber],
		TruckLicensePlates:   trimmed[models.FieldTruckLicensePlates],
		TrailerLicensePlates: trimmed[models.FieldTrailerLicensePlates],
		CarrierCountry:       trimmed[models.FieldCarrierCountry],
		CarrierTaxCode:       trimmed[models.FieldCarrierTaxCode],
		CarrierFullName:      trimmed[models.FieldCarrierFullName],
		BorderCrossing:       trimmed[models.FieldBorderCrossing],
		BorderCrossingDate:   trimmed[models.FieldBorderCrossingDate],
	}, nil
}

func (v *Validator) validateAttachments(atts []models.Attachment) []models.FieldError {
	var errs []models.FieldError

	if len(atts) > v.maxAttachments {
		errs = append(errs, models.FieldError{
			Field:  "attachment",
			Reason: fmt.Sprintf("%d attachments supplied, at most %d allowed", len(atts), v.maxAttachments),
		})
	}

	for _, att := range atts {
		if _, ok := allowedMIMETypes[att.MIMEType]; !ok {
			errs = append(errs, models.FieldError{
				Field:  "attachment",
				Reason: fmt.Sprintf("unsupported content type %q for %s", att.MIMEType, att.Filename),
			})
		}
		if size := int64(len(att.Data)); size > v.maxBytes {
			errs = append(errs, models.FieldError{
				Field:  "attachment",
				Reason: fmt.Sprintf("%s is %d bytes, limit is %d", att.Filename, size, v.maxBytes),
			})
		}
	}

	return errs
}
