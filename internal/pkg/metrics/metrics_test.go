package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(disbursements.WithLabelValues("mpesa"))
	beforeAmount := testutil.ToFloat64(disbursedAmount)

	DisbursementRecorded("mpesa", decimal.NewFromInt(12000))

	assert.Equal(t, before+1, testutil.ToFloat64(disbursements.WithLabelValues("mpesa")))
	assert.Equal(t, beforeAmount+12000, testutil.ToFloat64(disbursedAmount))

	retries := testutil.ToFloat64(identifierRetries.WithLabelValues("application_number"))
	IdentifierRetried("application_number")
	assert.Equal(t, retries+1, testutil.ToFloat64(identifierRetries.WithLabelValues("application_number")))
}

func TestHandlerExposesHTTPMetrics(t *testing.T) {
	release := TrackInFlight()
	ObserveHTTP(http.MethodGet, "/api/v1/track/:number", http.StatusOK, 15*time.Millisecond)
	release()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `bobasi_http_requests_total{method="GET",route="/api/v1/track/:number",status="200"}`))
	assert.True(t, strings.Contains(body, "bobasi_http_inflight_requests 0"))
}
