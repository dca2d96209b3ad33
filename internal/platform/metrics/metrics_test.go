package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountsDomainEvents(t *testing.T) {
	r := NewRecorder()

	r.ExpenseSubmitted("Travel")
	r.ExpenseSubmitted("Travel")
	r.WorkflowInitiated("auto_approved")
	r.ApprovalProcessed("APPROVED", "APPROVED")
	r.CurrencyConverted("cache")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.expensesSubmitted.WithLabelValues("Travel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.workflowInitiations.WithLabelValues("auto_approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.approvalActions.WithLabelValues("APPROVED", "APPROVED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fxConversions.WithLabelValues("cache")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ExpenseSubmitted("Food")
		r.WorkflowInitiated("created")
		r.ApprovalProcessed("REJECTED", "REJECTED")
		r.CurrencyConverted("api")
		r.ObserveHTTPRequest("GET", "/health", "200", time.Millisecond)
	})
}

func TestRecorder_HandlerServesRegistry(t *testing.T) {
	r := NewRecorder()
	r.ObserveHTTPRequest("GET", "/health", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "expense_app_http_request_duration_seconds")
}
