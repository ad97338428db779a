package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Checker-Finance/blogctl/internal/cookie"
	"github.com/Checker-Finance/blogctl/internal/credstore"
	"github.com/Checker-Finance/blogctl/internal/httpclient"
	"github.com/Checker-Finance/blogctl/internal/metrics"
)

type requestIDKey struct{}

// Doer executes a request and returns the fully read response.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*httpclient.Response, error)
}

// Dispatcher sends authenticated API requests. On a 401 it trades the
// refresh_token cookie for a new access token at api/token and re-issues the
// original request, at most maxRefreshes times per dispatch.
type Dispatcher struct {
	logger       *zap.Logger
	exec         Doer
	baseURL      *url.URL
	storage      credstore.Store
	cookies      *cookie.Jar
	maxRefreshes int
}

// New creates a Dispatcher resolving relative URLs against baseURL.
func New(logger *zap.Logger, exec Doer, baseURL string, storage credstore.Store, cookies *cookie.Jar, maxRefreshes int) (*Dispatcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("dispatch: invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("dispatch: base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if maxRefreshes < 0 {
		maxRefreshes = 0
	}
	return &Dispatcher{
		logger:       logger,
		exec:         exec,
		baseURL:      base,
		storage:      storage,
		cookies:      cookies,
		maxRefreshes: maxRefreshes,
	}, nil
}

// Dispatch runs req and then calls exactly one of onSuccess or onFailure.
// Either callback may be nil.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, onSuccess, onFailure func()) Result {
	res := d.Do(ctx, req)
	if res.OK() {
		if onSuccess != nil {
			onSuccess()
		}
	} else if onFailure != nil {
		onFailure()
	}
	return res
}

// Do runs req through the refresh-and-retry cycle and reports the outcome.
func (d *Dispatcher) Do(ctx context.Context, req Request) Result {
	requestID := uuid.NewString()
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	log := d.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("url", req.URL))

	res := d.run(ctx, log, req)
	metrics.IncDispatch(res.Outcome.String())
	if res.OK() {
		log.Debug("dispatch.success",
			zap.Int("status", res.Status),
			zap.Int("refreshes", res.Refreshes))
	} else {
		log.Info("dispatch.failure",
			zap.Int("status", res.Status),
			zap.Int("refreshes", res.Refreshes),
			zap.Error(res.Err))
	}
	return res
}

func (d *Dispatcher) run(ctx context.Context, log *zap.Logger, req Request) Result {
	res := Result{Outcome: Failure}
	for {
		accessToken, err := d.accessToken(ctx)
		if err != nil {
			res.Err = err
			return res
		}

		resp, err := d.send(ctx, req.Method, req.URL, accessToken, req.Body)
		if err != nil {
			res.Err = fmt.Errorf("%w: %w", ErrTransport, err)
			return res
		}
		res.Status = resp.StatusCode

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			res.Outcome = Success
			return res

		case http.StatusUnauthorized:
			refreshToken, err := d.cookies.Get(ctx, cookie.RefreshTokenName)
			if err != nil {
				res.Err = err
				return res
			}
			if refreshToken == "" {
				metrics.IncRefresh("skipped")
				res.Err = ErrUnauthorized
				return res
			}
			if res.Refreshes >= d.maxRefreshes {
				metrics.IncRefresh("skipped")
				res.Err = ErrRefreshBudgetExhausted
				return res
			}
			if err := d.refresh(ctx, accessToken, refreshToken); err != nil {
				metrics.IncRefresh("failed")
				log.Warn("dispatch.refresh_failed", zap.Error(err))
				res.Err = err
				return res
			}
			metrics.IncRefresh("ok")
			res.Refreshes++
			log.Info("dispatch.token_refreshed", zap.Int("refreshes", res.Refreshes))

		default:
			res.Err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
			return res
		}
	}
}

// refresh exchanges the refresh token for a new access token and stores it.
// Storage is only written once a usable token has been decoded.
func (d *Dispatcher) refresh(ctx context.Context, accessToken, refreshToken string) error {
	body, err := json.Marshal(tokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	resp, err := d.send(ctx, http.MethodPost, TokenPath, accessToken, body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if !resp.OK() {
		return fmt.Errorf("%w: token endpoint returned %d", ErrRefreshFailed, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body, &tr); err != nil {
		return fmt.Errorf("%w: decode token response: %w", ErrRefreshFailed, err)
	}
	if tr.AccessToken == "" {
		return fmt.Errorf("%w: empty accessToken", ErrRefreshFailed)
	}

	if err := d.storage.Set(ctx, credstore.AccessTokenKey, tr.AccessToken); err != nil {
		return fmt.Errorf("%w: store access token: %w", ErrRefreshFailed, err)
	}
	return nil
}

func (d *Dispatcher) accessToken(ctx context.Context) (string, error) {
	token, err := d.storage.Get(ctx, credstore.AccessTokenKey)
	if errors.Is(err, credstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("dispatch: load access token: %w", err)
	}
	return token, nil
}

// send issues one request with the bearer and JSON headers and records any Set-Cookie.
func (d *Dispatcher) send(ctx context.Context, method, rawURL, accessToken string, body []byte) (*httpclient.Response, error) {
	target, err := d.resolve(rawURL)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	setHeaders(req, accessToken)
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := d.exec.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := d.cookies.Capture(ctx, resp.Header); err != nil {
		d.logger.Warn("dispatch.cookie_capture_failed", zap.Error(err))
	}
	return resp, nil
}

func (d *Dispatcher) resolve(rawURL string) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("dispatch: invalid url %q: %w", rawURL, err)
	}
	return d.baseURL.ResolveReference(ref).String(), nil
}

// setHeaders sets the headers every blog API call carries.
func setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
