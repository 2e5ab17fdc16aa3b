package payout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSendPayoutSuccess(t *testing.T) {
	var gotAuth, gotIdempotency string
	var gotReq Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payouts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotIdempotency = r.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Result{BatchID: "batch-7"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "secret-key", 5*time.Second)
	result, err := client.SendPayout(context.Background(), &Request{
		Destination: "creator@example.com",
		USDAmount:   decimal.RequireFromString("8.00"),
		Reference:   "ref-123",
	})
	if err != nil {
		t.Fatalf("SendPayout failed: %v", err)
	}
	if result.BatchID != "batch-7" {
		t.Errorf("expected batch-7, got %s", result.BatchID)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotIdempotency != "ref-123" {
		t.Errorf("expected idempotency key ref-123, got %q", gotIdempotency)
	}
	if gotReq.Destination != "creator@example.com" {
		t.Errorf("unexpected destination %q", gotReq.Destination)
	}
}

func TestSendPayoutRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(Result{BatchID: "batch-9"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "secret-key", 5*time.Second)
	result, err := client.SendPayout(context.Background(), &Request{
		Destination: "creator@example.com",
		USDAmount:   decimal.RequireFromString("20.00"),
		Reference:   "ref-456",
	})
	if err != nil {
		t.Fatalf("SendPayout failed after retries: %v", err)
	}
	if result.BatchID != "batch-9" {
		t.Errorf("expected batch-9, got %s", result.BatchID)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestSendPayoutRejectionIsPermanent(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "destination rejected"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "secret-key", 5*time.Second)
	_, err := client.SendPayout(context.Background(), &Request{
		Destination: "bad-destination",
		USDAmount:   decimal.RequireFromString("8.00"),
		Reference:   "ref-789",
	})

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if providerErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", providerErr.StatusCode)
	}
	if providerErr.Message != "destination rejected" {
		t.Errorf("expected provider message, got %q", providerErr.Message)
	}
	if attempts != 1 {
		t.Errorf("expected rejection not to be retried, got %d attempts", attempts)
	}
}
