package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("/test-route", "4xx"))

	ObserveRequest("/test-route", 404, 0.01)
	ObserveRequest("/test-route", 400, 0.02)

	got := testutil.ToFloat64(RequestsTotal.WithLabelValues("/test-route", "4xx"))
	if got-before != 2 {
		t.Errorf("4xx requests increased by %v, want 2", got-before)
	}
}

func TestObserveExtraction(t *testing.T) {
	success := ExtractionsTotal.WithLabelValues("means", "test", "success")
	failure := ExtractionsTotal.WithLabelValues("means", "test", "error")
	okBefore := testutil.ToFloat64(success)
	errBefore := testutil.ToFloat64(failure)

	ObserveExtraction("means", "test", 0.5, 1234, nil)
	ObserveExtraction("means", "test", 0.1, 0, errors.New("boom"))

	if got := testutil.ToFloat64(success) - okBefore; got != 1 {
		t.Errorf("success count increased by %v, want 1", got)
	}
	if got := testutil.ToFloat64(failure) - errBefore; got != 1 {
		t.Errorf("error count increased by %v, want 1", got)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{405, "4xx"},
		{500, "5xx"},
	}

	for _, tt := range tests {
		if got := statusCode(tt.code); got != tt.want {
			t.Errorf("statusCode(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}
