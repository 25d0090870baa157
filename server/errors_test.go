package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "not-found", "no calculator with id 'x'")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	if resp.Error.Code != "not-found" {
		t.Errorf("expected code not-found, got %q", resp.Error.Code)
	}
	if resp.Error.Message != "no calculator with id 'x'" {
		t.Errorf("unexpected message: %q", resp.Error.Message)
	}

	// No field named, so the key is omitted entirely.
	if strings.Contains(rec.Body.String(), `"field"`) {
		t.Errorf("expected no field key: %s", rec.Body.String())
	}
}

func TestWriteFieldError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeFieldError(rec, http.StatusBadRequest, "invalid-dimension", "unknown dimension 'sound'", "base")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	if resp.Error.Field != "base" {
		t.Errorf("expected field base, got %q", resp.Error.Field)
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]int{"n": 3})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"n":3}` {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestWriteJSONUnmarshalableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, func() {})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500 for an unmarshalable value, got %d", rec.Code)
	}
}

func TestWriteNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	writeNoContent(rec)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}
