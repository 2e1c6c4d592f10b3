package models

import (
	"reflect"
	"testing"
)

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "carrier_country", Reason: "unknown country"},
		{Field: "border_crossing", Reason: "unknown crossing"},
	}}

	want := "validation failed: carrier_country, border_crossing"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, expected %q", got, want)
	}
	if got := err.FieldNames(); !reflect.DeepEqual(got, []string{"carrier_country", "border_crossing"}) {
		t.Errorf("FieldNames() = %v, order not preserved", got)
	}
}
