package validation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidateTenantID checks that a tenant identifier is a well-formed UUID.
func ValidateTenantID(tenantID string) error {
	v := NewError()

	if strings.TrimSpace(tenantID) == "" {
		v.Add("tenantId", "tenant ID is required")
	} else if _, err := uuid.Parse(tenantID); err != nil {
		v.Add("tenantId", "tenant ID must be a valid UUID")
	}

	return v.OrNil()
}

// ValidateTicker checks that a ticker path or query parameter is present.
func ValidateTicker(ticker string) error {
	v := NewError()

	if strings.TrimSpace(ticker) == "" {
		v.Add("ticker", "ticker is required")
	}

	return v.OrNil()
}

// ValidateDate checks a calendar-date query parameter and returns its
// parsed value.
func ValidateDate(raw string) (time.Time, error) {
	v := NewError()

	raw = strings.TrimSpace(raw)
	if raw == "" {
		v.Add("date", "date is required")
		return time.Time{}, v.OrNil()
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		v.Add("date", "date must be YYYY-MM-DD")
		return time.Time{}, v.OrNil()
	}

	return date, nil
}
