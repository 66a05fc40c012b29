package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/metrics"
)

const secret = "test-secret"

func protected(t *testing.T) (http.Handler, *domain.Actor) {
	var seen domain.Actor
	h := Auth(secret, "smc-idp", logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		require.True(t, ok)
		seen = actor
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func TestAuth_ValidToken(t *testing.T) {
	h, seen := protected(t)
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleProfessional}
	token, err := IssueToken(actor, secret, "smc-idp", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, actor, *seen)
}

func TestAuth_Rejections(t *testing.T) {
	h, _ := protected(t)
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleClient}

	expired, err := IssueToken(actor, secret, "smc-idp", -time.Minute)
	require.NoError(t, err)
	wrongSecret, err := IssueToken(actor, "other", "smc-idp", time.Minute)
	require.NoError(t, err)
	wrongIssuer, err := IssueToken(actor, secret, "someone-else", time.Minute)
	require.NoError(t, err)
	badRole, err := IssueToken(domain.Actor{ID: actor.ID, Role: "admin"}, secret, "smc-idp", time.Minute)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"expired":      "Bearer " + expired,
		"wrong secret": "Bearer " + wrongSecret,
		"wrong issuer": "Bearer " + wrongIssuer,
		"unknown role": "Bearer " + badRole,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m, "booking"))
	r.HandleFunc("/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/"+uuid.NewString(), nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/"+uuid.NewString(), nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues("booking", http.MethodGet, "/bookings/{bookingId}", "404")))
}
