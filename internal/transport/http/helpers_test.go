package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"wastelookup/internal/collection"
	apierrors "wastelookup/internal/errors"
	"wastelookup/internal/security"
	"wastelookup/internal/services"
	"wastelookup/internal/shared/testutil"
)

const testAdminKey = "s3cret"

type testServer struct {
	router  http.Handler
	service *services.CollectionService
}

func newTestServer(t *testing.T, src collection.Source) *testServer {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewCollectionService(services.CollectionServiceConfig{
		Source:     src,
		Columns:    collection.DefaultColumns(),
		PricePerKg: 0.25,
	}, logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	health := services.NewHealthService("test", "", svc, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewHealthHandler(health, logger).Routes(r)
		r.Mount("/collections", NewCollectionHandler(svc, logger, errorHandler).Routes())
		r.Mount("/admin", NewAdminHandler(svc, security.NewAdminGate(testAdminKey), logger, errorHandler).Routes())
	})
	return &testServer{router: r, service: svc}
}

func (s *testServer) do(t *testing.T, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
