package core

import (
	"context"
	"errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestErrorPredicates(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
		auth      bool
		cancelled bool
	}{
		{name: "authentication", err: NewAuthenticationFailed("bad token"), auth: true},
		{name: "not found", err: NewNotFound("missing")},
		{name: "bad request", err: NewBadRequest("malformed")},
		{name: "unavailable", err: NewServiceUnavailable("down"), retryable: true},
		{name: "transport", err: NewTransportError(errors.New("refused"), "dial"), retryable: true},
		{name: "cancelled", err: NewCancelled(context.Canceled), cancelled: true},
		{name: "raw context cancel", err: context.Canceled, cancelled: true},
		{name: "service auth", err: NewServiceAuthFailed(errors.New("rejected"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.retryable {
				t.Fatalf("IsRetryable = %v, want %v", got, tc.retryable)
			}
			if got := IsAuthenticationFailed(tc.err); got != tc.auth {
				t.Fatalf("IsAuthenticationFailed = %v, want %v", got, tc.auth)
			}
			if got := IsCancelled(tc.err); got != tc.cancelled {
				t.Fatalf("IsCancelled = %v, want %v", got, tc.cancelled)
			}
		})
	}
}

func TestServiceAuthFailedIsNotRetryable(t *testing.T) {
	err := NewServiceAuthFailed(NewTransportError(nil, "dial"))
	if IsRetryable(err) {
		t.Fatal("a failed service authentication must be terminal for the call")
	}
	if !IsServiceAuthFailed(err) {
		t.Fatal("expected the service auth text code")
	}
}

func TestServiceAuthFailedKeepsCauseCategory(t *testing.T) {
	cases := []struct {
		name     string
		cause    *goerrors.Error
		category goerrors.Category
	}{
		{name: "transport", cause: NewTransportError(nil, "dial"), category: goerrors.CategoryExternal},
		{name: "unavailable", cause: NewServiceUnavailable("502"), category: goerrors.CategoryExternal},
		{name: "bad request", cause: NewBadRequest("shape"), category: goerrors.CategoryBadInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewServiceAuthFailed(tc.cause)
			var richErr *goerrors.Error
			if !goerrors.As(err, &richErr) {
				t.Fatalf("expected a rich error, got %v", err)
			}
			if richErr.Category != tc.category {
				t.Fatalf("cause category lost: got %q, want %q", richErr.Category, tc.category)
			}
		})
	}
}

func TestIdentityErrorMapperPreservesEnvelope(t *testing.T) {
	original := NewNotFound("no such user")
	mapped := identityErrorMapper(original)
	if mapped.TextCode != ErrorCodeNotFound {
		t.Fatalf("unexpected text code %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", mapped.Code)
	}
}

func TestIdentityErrorMapperNormalizesForeignErrors(t *testing.T) {
	mapped := identityErrorMapper(context.Canceled)
	if mapped.TextCode != ErrorCodeCancelled {
		t.Fatalf("expected cancellation envelope, got %q", mapped.TextCode)
	}

	mapped = identityErrorMapper(errors.New("connection refused"))
	if mapped.TextCode != ErrorCodeTransportError {
		t.Fatalf("expected transport envelope, got %q", mapped.TextCode)
	}
	if mapped.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %v", mapped.Category)
	}
}

func TestEnsureIdentityErrorEnvelopeFillsDefaults(t *testing.T) {
	err := goerrors.New("boom", goerrors.CategoryExternal)
	ensured := ensureIdentityErrorEnvelope(err)
	if ensured.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", ensured.Code)
	}
	if ensured.TextCode != ErrorCodeServiceUnavailable {
		t.Fatalf("unexpected text code %q", ensured.TextCode)
	}
}
