package validation

import (
	"testing"

	"github.com/google/uuid"
)

func TestValidateTenantID(t *testing.T) {
	if err := ValidateTenantID(uuid.New().String()); err != nil {
		t.Errorf("Expected valid UUID to pass, got %v", err)
	}

	for _, raw := range []string{"", "  ", "not-a-uuid", "123"} {
		if err := ValidateTenantID(raw); err == nil {
			t.Errorf("Expected %q to fail validation", raw)
		}
	}
}

func TestValidateDate(t *testing.T) {
	date, err := ValidateDate("2025-03-10")
	if err != nil {
		t.Fatalf("Expected valid date to pass, got %v", err)
	}
	if date.Format("2006-01-02") != "2025-03-10" {
		t.Errorf("Unexpected parsed date: %v", date)
	}

	for _, raw := range []string{"", "10/03/2025", "2025-13-40", "soon"} {
		if _, err := ValidateDate(raw); err == nil {
			t.Errorf("Expected %q to fail validation", raw)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	v := NewError()
	if v.HasErrors() || v.OrNil() != nil {
		t.Error("Expected empty error to be nil")
	}

	v.Add("ticker", "ticker is required")
	if v.OrNil() == nil {
		t.Error("Expected error after adding a field")
	}
	if v.Error() == "validation failed" {
		t.Error("Expected field detail in message")
	}
}
