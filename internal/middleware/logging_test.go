package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggerPassesThrough(t *testing.T) {
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Errorf("status: got %d, want 418", rr.Code)
	}
	if rr.Body.String() != "short and stout" {
		t.Errorf("body: got %q", rr.Body.String())
	}
}

func TestResponseWriterStatusCapture(t *testing.T) {
	t.Run("explicit WriteHeader", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
		rw.WriteHeader(http.StatusNotFound)
		if rw.statusCode != http.StatusNotFound {
			t.Errorf("statusCode: got %d, want 404", rw.statusCode)
		}
	})

	t.Run("implicit 200 on Write", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		rw.Write([]byte("ok"))
		if rw.statusCode != http.StatusOK {
			t.Errorf("statusCode: got %d, want 200", rw.statusCode)
		}
	})

	t.Run("only first WriteHeader counts", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusOK)
		if rw.statusCode != http.StatusNotFound {
			t.Errorf("statusCode: got %d, want 404", rw.statusCode)
		}
	})
}
