package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paymentsops/ipn-ingest/internal/handlers"
	"github.com/paymentsops/ipn-ingest/internal/models"
)

// fakeRecorder mimics the store's first-write-wins upsert in memory.
type fakeRecorder struct {
	records map[string]models.TransactionRecord
	err     error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{records: map[string]models.TransactionRecord{}}
}

func (f *fakeRecorder) UpsertTransaction(_ context.Context, rec models.TransactionRecord) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.records[rec.TransactionID]; ok {
		return false, nil
	}
	f.records[rec.TransactionID] = rec
	return true, nil
}

func newTestRouter(rec handlers.Recorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers.RegisterIPNRoutes(r, []string{"/ipn"}, rec, logger)
	return r
}

func postIPN(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, models.IPNResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/ipn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp models.IPNResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestIPN_EmptyBodyIsLivenessProbe(t *testing.T) {
	rec := newFakeRecorder()
	r := newTestRouter(rec)

	for _, body := range []string{"", "{}", "  "} {
		w, resp := postIPN(t, r, body)
		assert.Equal(t, http.StatusOK, w.Code, "body %q", body)
		assert.Equal(t, "200", resp.MessageCode)
		assert.Equal(t, "Ping received", resp.Message)
	}
	assert.Empty(t, rec.records, "probes must not be persisted")
}

func TestIPN_MissingTransactionIdIsBadRequest(t *testing.T) {
	rec := newFakeRecorder()
	r := newTestRouter(rec)

	tests := []string{
		`{"AcctNo": "01100012345"}`,
		`{"TransactionId": ""}`,
		`{"TransactionId": "   "}`,
	}
	for _, body := range tests {
		w, resp := postIPN(t, r, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Equal(t, "400", resp.MessageCode)
		assert.Equal(t, "Missing required field TransactionId", resp.Message)
	}
	assert.Empty(t, rec.records)
}

func TestIPN_InvalidJSONIsBadRequest(t *testing.T) {
	r := newTestRouter(newFakeRecorder())

	w, resp := postIPN(t, r, `{"TransactionId": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "400", resp.MessageCode)
}

func TestIPN_ValidNotificationIsStoredWithDerivedFields(t *testing.T) {
	rec := newFakeRecorder()
	r := newTestRouter(rec)

	w, resp := postIPN(t, r, `{
		"TransactionId": "FTC123",
		"AcctNo": "01100012345",
		"Currency": "KES",
		"Amount": "1500.00",
		"Narration": "MPS 254712345678 JOHN DOE",
		"CustMemoLine1": "TI28ZF3AQY~631412",
		"EventType": "CREDIT"
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "200", resp.MessageCode)
	assert.Equal(t, "Successfully received data", resp.Message)
	assert.Equal(t, "FTC123", resp.TransactionID)
	assert.Equal(t, "TI28ZF3AQY", resp.Reference)

	stored, ok := rec.records["FTC123"]
	require.True(t, ok)
	assert.Equal(t, "TI28ZF3AQY", stored.FinalReference, "memo line preferred over narration")
	assert.Equal(t, "0712345678", stored.MobileNumber, "mobile enrichment from narration")
	assert.Equal(t, "CREDIT", stored.EventType)
}

func TestIPN_PosNarrationReference(t *testing.T) {
	rec := newFakeRecorder()
	r := newTestRouter(rec)

	w, _ := postIPN(t, r, `{"TransactionId":"TX1","Narration":"POSAG1~999888777666"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	stored, ok := rec.records["TX1"]
	require.True(t, ok)
	assert.Equal(t, "999888777666", stored.FinalReference)
}

// Extraction degrades rather than gating: a notification with no narration at
// all is still recorded, with empty derived fields.
func TestIPN_NoNarrationStillStored(t *testing.T) {
	rec := newFakeRecorder()
	r := newTestRouter(rec)

	w, resp := postIPN(t, r, `{"TransactionId": "FTC999"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "200", resp.MessageCode)
	assert.Empty(t, resp.Reference)

	stored, ok := rec.records["FTC999"]
	require.True(t, ok)
	assert.Empty(t, stored.FinalReference)
	assert.Empty(t, stored.MobileNumber)
}

// Redelivery of the same TransactionId must answer 200 again (the bank stops
// retrying) and leave exactly one stored record.
func TestIPN_DuplicateDeliveryIsIdempotent(t *testing.T) {
	rec := newFakeRecorder()
	r := newTestRouter(rec)

	body := `{"TransactionId":"TX1","Narration":"POSAG1~999888777666"}`

	w1, resp1 := postIPN(t, r, body)
	w2, resp2 := postIPN(t, r, body)

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "200", resp1.MessageCode)
	assert.Equal(t, "200", resp2.MessageCode)

	require.Len(t, rec.records, 1)
	assert.Equal(t, "999888777666", rec.records["TX1"].FinalReference)
}

func TestIPN_PersistenceFailureSignalsRetry(t *testing.T) {
	rec := newFakeRecorder()
	rec.err = errors.New("connection refused")
	r := newTestRouter(rec)

	w, resp := postIPN(t, r, `{"TransactionId": "FTC123"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "500", resp.MessageCode)
	assert.Equal(t, "Database error", resp.Message)
}

func TestIPN_MountedOnMultiplePaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rec := newFakeRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers.RegisterIPNRoutes(r, []string{"/ipn", "/"}, rec, logger)

	for _, path := range []string{"/ipn", "/"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(""))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "path %s", path)
	}
}
