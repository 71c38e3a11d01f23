// internal/app/payments/client_test.go
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "sk_test_123"}, zap.NewNop())
}

func TestAuthorizeSuccess(t *testing.T) {
	var gotPath, gotAuth, gotIdem string
	var gotBody authorizeRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(authorizationResponse{ID: "auth_42", Status: StatusHeld})
	})

	id, err := client.Authorize(context.Background(), 5000, "cad", map[string]string{"mentee_id": "abc"})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if id != "auth_42" {
		t.Errorf("id = %q, want auth_42", id)
	}
	if gotPath != "POST /v1/authorizations" {
		t.Errorf("request = %q", gotPath)
	}
	if gotAuth != "Bearer sk_test_123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotIdem == "" {
		t.Error("missing Idempotency-Key header on mutating call")
	}
	if gotBody.AmountMinor != 5000 || gotBody.Currency != "cad" {
		t.Errorf("body = %+v", gotBody)
	}
	if gotBody.Metadata["mentee_id"] != "abc" {
		t.Errorf("metadata = %+v", gotBody.Metadata)
	}
}

func TestCaptureAndCancelPaths(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.Capture(context.Background(), "auth_9"); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := client.Cancel(context.Background(), "auth_9"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	want := []string{
		"POST /v1/authorizations/auth_9/capture",
		"POST /v1/authorizations/auth_9/cancel",
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("request %d = %q, want %q", i, paths[i], p)
		}
	}
}

func TestQueryStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.Header.Get("Idempotency-Key") != "" {
			t.Error("Idempotency-Key must not be sent on reads")
		}
		_ = json.NewEncoder(w).Encode(authorizationResponse{ID: "auth_9", Status: StatusCaptured})
	})

	st, err := client.Query(context.Background(), "auth_9")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if st != StatusCaptured {
		t.Errorf("status = %q, want captured", st)
	}
}

func TestErrorCategories(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		check     func(error) bool
		checkDesc string
	}{
		{"declined is rejected", http.StatusPaymentRequired, IsRejected, "IsRejected"},
		{"unprocessable is rejected", http.StatusUnprocessableEntity, IsRejected, "IsRejected"},
		{"server error is retryable", http.StatusInternalServerError, IsRetryable, "IsRetryable"},
		{"throttled is retryable", http.StatusTooManyRequests, IsRetryable, "IsRetryable"},
		{"bad credentials is fatal", http.StatusUnauthorized, IsFatal, "IsFatal"},
		{"forbidden is fatal", http.StatusForbidden, IsFatal, "IsFatal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":{"code":"test_code","message":"test message"}}`))
			})

			err := client.Capture(context.Background(), "auth_9")
			if err == nil {
				t.Fatal("want error")
			}
			if !tc.check(err) {
				t.Errorf("%s(err) = false for %v", tc.checkDesc, err)
			}

			var pe *Error
			if !errors.As(err, &pe) {
				t.Fatalf("err %T is not *Error", err)
			}
			if pe.Status != tc.status || pe.Code != "test_code" {
				t.Errorf("error = %+v", pe)
			}
		})
	}
}

func TestTransportFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listening

	client := New(Config{BaseURL: srv.URL, APIKey: "sk"}, zap.NewNop())
	_, err := client.Authorize(context.Background(), 100, "cad", nil)
	if !IsRetryable(err) {
		t.Fatalf("IsRetryable = false for transport failure: %v", err)
	}
}
