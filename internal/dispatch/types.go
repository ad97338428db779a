package dispatch

import "errors"

// TokenPath is the refresh endpoint, relative to the base URL.
const TokenPath = "api/token"

// RequestIDHeader carries the dispatch id shared by the original request, its refresh and its retries.
const RequestIDHeader = "X-Request-ID"

var (
	// ErrUnauthorized is a 401 with no refresh token cookie to recover with.
	ErrUnauthorized = errors.New("dispatch: unauthorized and no refresh token")
	// ErrRefreshFailed wraps any failure of the token refresh call.
	ErrRefreshFailed = errors.New("dispatch: token refresh failed")
	// ErrRefreshBudgetExhausted is a 401 after the allowed number of refreshes.
	ErrRefreshBudgetExhausted = errors.New("dispatch: still unauthorized after refresh")
	// ErrUnexpectedStatus is any status other than 200, 201 or a recoverable 401.
	ErrUnexpectedStatus = errors.New("dispatch: unexpected status")
	// ErrTransport means the request produced no response.
	ErrTransport = errors.New("dispatch: request failed")
)

// Request is one API call: method, URL relative to the base URL, optional JSON body.
type Request struct {
	Method string
	URL    string
	Body   []byte
}

// Outcome is the terminal state of a dispatch.
type Outcome int

const (
	Failure Outcome = iota
	Success
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Result describes how a dispatch ended.
type Result struct {
	Outcome Outcome
	// Status is the last status code seen for the original request (0 if none).
	Status int
	// Refreshes is the number of successful token refreshes performed.
	Refreshes int
	// Err is nil on success and explains the failure otherwise.
	Err error
}

// OK reports a successful dispatch.
func (r Result) OK() bool { return r.Outcome == Success }

type tokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}
