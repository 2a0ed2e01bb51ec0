package keepalive

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := New("http://localhost/ipn", "every ten minutes", discardLogger())
	assert.Error(t, err)
}

func TestPing_PostsEmptyJSONBody(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "{}", string(body))
		hits.Add(1)
	}))
	defer srv.Close()

	p, err := New(srv.URL, "@every 10m", discardLogger())
	require.NoError(t, err)

	p.ping()
	assert.Equal(t, int32(1), hits.Load())
}

// A dead target must be swallowed, not panic or propagate.
func TestPing_FailureIsSilent(t *testing.T) {
	p, err := New("http://127.0.0.1:1/ipn", "@every 10m", discardLogger())
	require.NoError(t, err)

	assert.NotPanics(t, p.ping)
}
