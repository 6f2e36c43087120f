package http

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "wastelookup/internal/errors"
	"wastelookup/internal/shared/testutil"
)

func TestCollectionHandler_GetCollection(t *testing.T) {
	srv := newTestServer(t, testutil.ScenarioSource())

	t.Run("estimate uses configured rate", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/collections/000-111-222?estimate=true", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

		body := decode(t, rec)
		assert.Equal(t, testutil.ScenarioChip, body["chip_id"])
		assert.Equal(t, "2024-01-05", body["from"])
		assert.Equal(t, "2024-02-10", body["to"])
		assert.EqualValues(t, 2, body["pickup_count"])
		assert.InDelta(t, 5.5, body["total_mass_kg"], 1e-9)
		assert.InDelta(t, 0.25, body["rate"], 1e-9)
		assert.InDelta(t, 1.375, body["estimated_amount"], 1e-9)

		records := body["records"].([]any)
		require.Len(t, records, 2)
		assert.Equal(t, "2024-02-10", records[0].(map[string]any)["date"])
		assert.Equal(t, "2024-01-05", records[1].(map[string]any)["date"])
	})

	t.Run("explicit rate wins", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/collections/000111222?rate=1&estimate=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.InDelta(t, 5.5, decode(t, rec)["estimated_amount"], 1e-9)
	})

	t.Run("no estimate by default", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/collections/000111222?from=2024-02-01&to=2024-02-28", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.NotContains(t, body, "estimated_amount")
		assert.NotContains(t, body, "rate")
		assert.EqualValues(t, 1, body["pickup_count"])
		assert.InDelta(t, 2.0, body["total_mass_kg"], 1e-9)
		assert.Equal(t, map[string]any{"from": "2024-01-05", "to": "2024-02-10"}, body["available"])
	})

	t.Run("chip with encoded spaces", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/collections/000%20111%20222", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testutil.ScenarioChip, decode(t, rec)["chip_id"])
	})
}

func TestCollectionHandler_Errors(t *testing.T) {
	srv := newTestServer(t, testutil.ScenarioSource())

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantType   string
	}{
		{"unknown chip", "/api/collections/123", http.StatusNotFound, apierrors.TypeChipNotFound},
		{"reversed range", "/api/collections/000111222?from=2024-03-01&to=2024-01-01", http.StatusBadRequest, apierrors.TypeInvalidRange},
		{"empty range", "/api/collections/000111222?from=2023-01-01&to=2023-02-01", http.StatusNotFound, apierrors.TypeEmptyRange},
		{"bad date", "/api/collections/000111222?from=2024-13-01", http.StatusBadRequest, apierrors.TypeValidation},
		{"negative rate", "/api/collections/000111222?rate=-1", http.StatusBadRequest, apierrors.TypeValidation},
		{"non numeric rate", "/api/collections/000111222?rate=abc", http.StatusBadRequest, apierrors.TypeValidation},
		{"bad estimate flag", "/api/collections/000111222?estimate=maybe", http.StatusBadRequest, apierrors.TypeValidation},
		{"bad separator", "/api/collections/000111222/export.csv?sep=tab", http.StatusBadRequest, apierrors.TypeValidation},
		{"chip too long", "/api/collections/" + strings.Repeat("1", 65), http.StatusBadRequest, apierrors.TypeValidation},
		{"unknown chip span", "/api/collections/555/span", http.StatusNotFound, apierrors.TypeChipNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, apierrors.ProblemContentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantType, decode(t, rec)["type"])
		})
	}
}

func TestCollectionHandler_ProblemCarriesMessage(t *testing.T) {
	srv := newTestServer(t, testutil.ScenarioSource())

	rec := srv.do(t, http.MethodGet, "/api/collections/123", nil)
	body := decode(t, rec)
	assert.Equal(t, apierrors.MessageChipNotFound, body["message"])
	assert.Equal(t, "/api/collections/123", body["instance"])
}

func TestCollectionHandler_GetSpan(t *testing.T) {
	srv := newTestServer(t, testutil.ScenarioSource())

	rec := srv.do(t, http.MethodGet, "/api/collections/999888777/span", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "999888777", body["chip_id"])
	assert.EqualValues(t, 1, body["records"])
	assert.Equal(t, map[string]any{"from": "2024-01-20", "to": "2024-01-20"}, body["available"])
}

func TestCollectionHandler_ExportCSV(t *testing.T) {
	srv := newTestServer(t, testutil.ScenarioSource())

	t.Run("default format", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/collections/000111222/export.csv", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"),
			`filename="zvoz-000111222-2024-01-05-2024-02-10.csv"`)

		body := bytes.TrimPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF})
		assert.Equal(t, "date,kg\n2024-02-10,2\n2024-01-05,3.5\n", string(body))
	})

	t.Run("semicolon format", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/collections/000111222/export.csv?sep=semicolon", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "2024-01-05;3,5\n")
	})

	t.Run("errors stay problems", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/collections/123/export.csv", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.ProblemContentType, rec.Header().Get("Content-Type"))
	})
}
