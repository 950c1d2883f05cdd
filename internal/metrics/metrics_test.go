package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	Register()
	Register()

	assert.NotPanics(t, func() {
		ObserveHTTP("/api/v1/companies", http.MethodGet, 200, 12*time.Millisecond)
		IncReservation("PENDING")
		IncReservationConflict()
		IncAvailabilityCache(true)
		IncAvailabilityCache(false)
		IncQueueTransition("READY")
		IncRegistration("APPROVED")
		WSClientConnected()
		WSClientDisconnected()
	})
}

func TestHandler_ExposesNamespace(t *testing.T) {
	Register()
	IncRegistration("REJECTED")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "queueless_company_registrations_total")
}
