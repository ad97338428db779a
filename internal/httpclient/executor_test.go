package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/blogctl/internal/rate"
)

func newExec(retryMax int, client *http.Client) *Executor {
	return New(zap.NewNop(), nil, client, retryMax, "test")
}

// countingHandler returns failStatus for the first failCount calls, then 200 with body.
func countingHandler(failCount int, failStatus int, successBody []byte) (http.Handler, *atomic.Int32) {
	var n atomic.Int32
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if int(n.Add(1)) <= failCount {
			w.WriteHeader(failStatus)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(successBody)
	}), &n
}

// ─── Basic success ────────────────────────────────────────────────────────────

func TestDo_SuccessFirstAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL, nil)
	resp, err := newExec(2, srv.Client()).Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, resp.OK())
	assert.Equal(t, "yes", resp.Header.Get("X-Test"))
	assert.JSONEq(t, `{"id":1}`, string(resp.Body))
}

// ─── 4xx returned untouched, never retried ───────────────────────────────────

func TestDo_4xxReturnedWithoutRetry(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	resp, err := newExec(2, srv.Client()).Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.EqualValues(t, 1, count.Load(), "4xx must not be retried")
}

// ─── 5xx retry then success ───────────────────────────────────────────────────

func TestDo_Retries5xxThenSucceeds(t *testing.T) {
	h, count := countingHandler(1, http.StatusServiceUnavailable, []byte(`{"result":"ok"}`))
	srv := httptest.NewServer(h)
	defer srv.Close()

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	resp, err := newExec(2, srv.Client()).Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, count.Load(), "expected exactly 2 attempts")
}

// ─── 5xx exhausted → last response, no error ─────────────────────────────────

func TestDo_5xxExhaustedReturnsLastResponse(t *testing.T) {
	h, count := countingHandler(10, http.StatusBadGateway, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	resp, err := newExec(1, srv.Client()).Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.EqualValues(t, 2, count.Load(), "retryMax=1 means 2 total attempts")
}

// ─── retryMax=0: single attempt only ─────────────────────────────────────────

func TestDo_ZeroRetries(t *testing.T) {
	h, count := countingHandler(10, http.StatusInternalServerError, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	resp, err := newExec(0, srv.Client()).Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.EqualValues(t, 1, count.Load(), "retryMax=0 means exactly one attempt")
}

// ─── PUT body is re-sent on retry ────────────────────────────────────────────

func TestDo_BodyResentOnRetry(t *testing.T) {
	var received []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received = append(received, string(b))
		if len(received) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	body := []byte(`{"title":"t","content":"c"}`)
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPut, srv.URL, bytes.NewReader(body))

	_, err := newExec(1, srv.Client()).Do(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, received, 2, "expected two attempts")
	assert.JSONEq(t, string(body), received[0])
	assert.JSONEq(t, string(body), received[1], "retry must re-send the full body")
}

// ─── Transport failure ───────────────────────────────────────────────────────

func TestDo_TransportErrorExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	_, err := newExec(1, &http.Client{Timeout: time.Second}).Do(context.Background(), req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
}

// ─── Context cancellation stops retries ──────────────────────────────────────

func TestDo_ContextCancelled(t *testing.T) {
	h, _ := countingHandler(10, http.StatusServiceUnavailable, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	_, err := newExec(3, srv.Client()).Do(ctx, req)
	require.ErrorIs(t, err, context.Canceled)
}

// ─── Rate limiter consulted per host ─────────────────────────────────────────

func TestDo_RateLimitWaitFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rateMgr := rate.NewManager(rate.Config{RequestsPerSecond: 1, Burst: 1})
	exec := New(zap.NewNop(), rateMgr, srv.Client(), 0, "test")

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	_, err := exec.Do(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = exec.Do(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
}
