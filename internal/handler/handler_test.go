package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Renessey/Solaris/internal/metrics"
	"github.com/Renessey/Solaris/internal/model"
	"github.com/Renessey/Solaris/internal/service"
	"github.com/Renessey/Solaris/internal/store"
)

// promauto registers on the default registry, so build the metrics once for
// the whole test binary.
var testMetrics = metrics.New()

var testZone = time.FixedZone("BRT", -3*60*60)

func newTestRouter() chi.Router {
	st := store.NewMemory()
	svc := service.New(st, testZone, 0)
	return Routes(NewRegistrationHandler(svc, testMetrics))
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestSubmitCreateThenUpdate(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/registrations", model.SubmitRequest{
		FullName: "Ana Silva",
		Document: "12345678901",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[submitResponse](t, rec)
	assert.Equal(t, service.OutcomeCreated, created.Result)
	assert.Equal(t, "123.456.789-01", created.Registration.Document)

	rec = doJSON(t, r, http.MethodPost, "/registrations", model.SubmitRequest{
		FullName: "Ana Silva",
		Document: "123.456.789-01",
		Plate:    "abc1234",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[submitResponse](t, rec)
	assert.Equal(t, service.OutcomeUpdated, updated.Result)
	assert.Equal(t, created.Registration.ID, updated.Registration.ID)
	assert.Equal(t, "ABC-1234", updated.Registration.Plate)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/registrations", model.SubmitRequest{Document: "12345678901"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/registrations", map[string]any{"full_name": "Ana", "bogus": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActiveListingAndCheckout(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/registrations", model.SubmitRequest{
		FullName: "Ana Silva",
		Document: "12345678901",
		Block:    "A",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[submitResponse](t, rec).Registration.ID

	rec = doJSON(t, r, http.MethodGet, "/registrations/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]model.Registration](t, rec), 1)

	rec = doJSON(t, r, http.MethodGet, "/registrations/active/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[map[string]int](t, rec)["count"])

	rec = doJSON(t, r, http.MethodPost, "/registrations/"+id+"/checkout", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/registrations/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Registration](t, rec))

	// Checkout is idempotent in effect: a repeat call succeeds.
	rec = doJSON(t, r, http.MethodPost, "/registrations/"+id+"/checkout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestActiveListingRejectsBadLot(t *testing.T) {
	r := newTestRouter()
	rec := doJSON(t, r, http.MethodGet, "/registrations/active?lot=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutUnknownID(t *testing.T) {
	r := newTestRouter()
	rec := doJSON(t, r, http.MethodPost, "/registrations/missing/checkout", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSuggestions(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/registrations", model.SubmitRequest{
		FullName: "Ana Silva",
		Document: "12345678901",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/registrations/suggestions?q=ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]model.Suggestion](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Ana Silva", got[0].FullName)

	// Sub-2-character queries come back empty, not as an error.
	rec = doJSON(t, r, http.MethodGet, "/registrations/suggestions?q=a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Suggestion](t, rec))
}

func TestGetAndPurge(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/registrations", model.SubmitRequest{
		FullName: "Ana Silva",
		Document: "12345678901",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[submitResponse](t, rec).Registration.ID

	rec = doJSON(t, r, http.MethodGet, "/registrations/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ana Silva", decode[model.Registration](t, rec).FullName)

	rec = doJSON(t, r, http.MethodDelete, "/registrations/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/registrations/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryIncludesDeparted(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/registrations", model.SubmitRequest{
		FullName: "Ana Silva",
		Document: "12345678901",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[submitResponse](t, rec).Registration.ID

	rec = doJSON(t, r, http.MethodPost, "/registrations/"+id+"/checkout", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/registrations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]model.Registration](t, rec)
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].CheckOutAt)
}

func TestBlocks(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, http.MethodGet, "/blocks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	table := decode[[]blockInfo](t, rec)
	require.Len(t, table, 24)
	assert.Equal(t, blockInfo{Code: "A", Lots: 49}, table[0])

	rec = doJSON(t, r, http.MethodGet, "/blocks/Z/lots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]int](t, rec), 46)

	rec = doJSON(t, r, http.MethodGet, "/blocks/W/lots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]int](t, rec))
}

func TestHealth(t *testing.T) {
	r := newTestRouter()
	rec := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
