package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapsKnownKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalidInput, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindNetworkFailure, http.StatusBadGateway},
		{KindStorageUnavailable, http.StatusServiceUnavailable},
		{KindUnknown, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := HTTPStatus(E(tc.kind, "x")); got != tc.want {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestHTTPStatusDefaultsToInternalError(t *testing.T) {
	t.Parallel()

	if got := HTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", got, http.StatusInternalServerError)
	}
	if got := HTTPStatus(nil); got != http.StatusOK {
		t.Fatalf("HTTPStatus(nil) = %d, want %d", got, http.StatusOK)
	}
}

func TestErrorStringFallsBackToKindWhenMessageEmpty(t *testing.T) {
	t.Parallel()

	err := Error{Kind: KindNotFound}
	if got := err.Error(); got != string(KindNotFound) {
		t.Fatalf("Error() = %q, want %q", got, string(KindNotFound))
	}
}

func TestWrapKeepsCauseAndKindThroughFmtWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := fmt.Errorf("fetch /: %w", Wrap(KindNetworkFailure, "origin fetch", cause))

	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable through the chain")
	}
	if !IsKind(err, KindNetworkFailure) {
		t.Fatalf("KindOf() = %q, want %q", KindOf(err), KindNetworkFailure)
	}
	if got := err.Error(); got != "fetch /: origin fetch: connection refused" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestIsKindRejectsNil(t *testing.T) {
	t.Parallel()

	if IsKind(nil, KindUnknown) {
		t.Fatal("nil error must not match any kind")
	}
}
