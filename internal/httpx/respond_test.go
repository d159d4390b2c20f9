package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNumberText(t *testing.T) {
	cases := map[string]string{
		`4000`:      "4000",
		`"4000.50"`: "4000.50",
		`" 12 "`:    "12",
		`"abc"`:     "abc",
		`1e3`:       "1e3",
		``:          "",
	}
	for in, want := range cases {
		if got := NumberText(json.RawMessage(in)); got != want {
			t.Errorf("NumberText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusConflict, "already engaged")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] != "already engaged" {
		t.Errorf("body = %q (%v)", rec.Body.String(), err)
	}
}
