package testutil

import (
	"errors"
	"testing"

	"agrolink-backend/internal/apperr"
)

// AssertCode fails the test unless err is a domain error with the given code.
func AssertCode(t *testing.T, err error, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected error with code %s, got %v", code, err)
	}
	if domainErr.Code != code {
		t.Errorf("expected code %s, got %s (%s)", code, domainErr.Code, domainErr.Message)
	}
}
