package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/blogctl/internal/metrics"
	"github.com/Checker-Finance/blogctl/internal/rate"
)

// Backoff returns the retry sleep duration for the given attempt number.
func Backoff(attempt int) time.Duration {
	switch attempt {
	case 0:
		return 100 * time.Millisecond
	case 1:
		return 250 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Executor sends requests with per-host rate limiting and optional retries.
// Only transport errors and 5xx responses are retried; every other status is
// handed back to the caller untouched so it can apply its own policy.
type Executor struct {
	logger   *zap.Logger
	rateMgr  *rate.Manager
	http     *http.Client
	retryMax int
	tag      string
}

// New creates an Executor. rateMgr may be nil. tag prefixes log event names.
func New(logger *zap.Logger, rateMgr *rate.Manager, httpClient *http.Client, retryMax int, tag string) *Executor {
	if retryMax < 0 {
		retryMax = 0
	}
	return &Executor{
		logger:   logger,
		rateMgr:  rateMgr,
		http:     httpClient,
		retryMax: retryMax,
		tag:      tag,
	}
}

// Do executes req and reads the whole body. A 5xx that survives every retry is
// returned as a Response, not an error; an error means no response was obtained.
func (e *Executor) Do(ctx context.Context, req *http.Request) (*Response, error) {
	if e.rateMgr != nil {
		if err := e.rateMgr.Wait(ctx, req.URL.Host); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var (
		lastErr  error
		lastResp *Response
	)
	for attempt := 0; attempt <= e.retryMax; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, Backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		resp, err := e.once(ctx, req)
		if err != nil {
			lastErr = err
			metrics.IncHTTPRequest(req.Method, 0)
			e.logger.Warn(e.tag+".http_failed",
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		metrics.IncHTTPRequest(req.Method, resp.StatusCode)

		if resp.StatusCode >= 500 {
			lastResp, lastErr = resp, nil
			e.logger.Warn(e.tag+".server_error",
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
				zap.Duration("latency", resp.Elapsed))
			continue
		}

		e.logger.Debug(e.tag+".http_done",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", resp.Elapsed))
		return resp, nil
	}

	if lastResp != nil && lastErr == nil {
		return lastResp, nil
	}
	return nil, fmt.Errorf("%s request failed after %d attempts: %w", e.tag, e.retryMax+1, lastErr)
}

// once performs a single attempt on a fresh copy of req so the body can be re-sent.
func (e *Executor) once(ctx context.Context, req *http.Request) (*Response, error) {
	attemptReq := req.Clone(ctx)
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind body: %w", err)
		}
		attemptReq.Body = body
	}

	start := time.Now()
	resp, err := e.http.Do(attemptReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	metrics.ObserveDuration(metrics.HTTPRequestDuration, start, req.Method)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Elapsed:    elapsed,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
