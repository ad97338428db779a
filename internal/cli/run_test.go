package cli

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/blogctl/internal/cookie"
	"github.com/Checker-Finance/blogctl/internal/credstore"
	"github.com/Checker-Finance/blogctl/internal/ui"
)

type call struct {
	action string
	page   string
	form   ui.FormValues
}

type fakeActions struct {
	calls []call
	err   error
}

func (f *fakeActions) record(action, page string, form ui.Form) error {
	f.calls = append(f.calls, call{action: action, page: page, form: ui.FormValues{
		ui.FieldArticleID: form.Value(ui.FieldArticleID),
		ui.FieldTitle:     form.Value(ui.FieldTitle),
		ui.FieldContent:   form.Value(ui.FieldContent),
	}})
	return f.err
}

func (f *fakeActions) Create(_ context.Context, form ui.Form) error {
	return f.record("create", "", form)
}

func (f *fakeActions) Modify(_ context.Context, page *url.URL, form ui.Form) error {
	return f.record("modify", page.String(), form)
}

func (f *fakeActions) Delete(_ context.Context, form ui.Form) error {
	return f.record("delete", "", form)
}

func newApp() (*App, *fakeActions, *bytes.Buffer) {
	store := credstore.NewMemory()
	actions := &fakeActions{}
	out := &bytes.Buffer{}
	return &App{
		Logger:  zap.NewNop(),
		Actions: actions,
		Store:   store,
		Cookies: cookie.NewJar(store),
		Out:     out,
	}, actions, out
}

func mustParse(t *testing.T, args ...string) *Args {
	t.Helper()
	a, err := ParseArgs(args)
	require.NoError(t, err)
	return a
}

// ─── Article actions ─────────────────────────────────────────────────────────

func TestRun_ArticleActions(t *testing.T) {
	app, actions, _ := newApp()
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, mustParse(t, "create", "-title", "T", "-content", "C")))
	require.NoError(t, app.Run(ctx, mustParse(t, "modify", "-id", "3", "-title", "T2")))
	require.NoError(t, app.Run(ctx, mustParse(t, "delete", "-id", "7")))

	require.Len(t, actions.calls, 3)
	assert.Equal(t, "create", actions.calls[0].action)
	assert.Equal(t, "T", actions.calls[0].form[ui.FieldTitle])
	assert.Equal(t, "C", actions.calls[0].form[ui.FieldContent])
	assert.Equal(t, "modify", actions.calls[1].action)
	assert.Equal(t, "/new-article?id=3", actions.calls[1].page)
	assert.Equal(t, "delete", actions.calls[2].action)
	assert.Equal(t, "7", actions.calls[2].form[ui.FieldArticleID])
}

func TestRun_CancelledIsNotAnError(t *testing.T) {
	app, actions, out := newApp()
	actions.err = ui.ErrCancelled

	err := app.Run(context.Background(), mustParse(t, "delete", "-id", "7"))

	require.NoError(t, err)
	assert.Contains(t, out.String(), "cancelled")
}

func TestRun_FailurePropagates(t *testing.T) {
	app, actions, _ := newApp()
	boom := errors.New("boom")
	actions.err = boom

	err := app.Run(context.Background(), mustParse(t, "create"))

	assert.ErrorIs(t, err, boom)
}

// ─── Credentials ─────────────────────────────────────────────────────────────

func TestRun_LoginLogout(t *testing.T) {
	app, _, _ := newApp()
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, mustParse(t, "login", "-access", "A", "-refresh", "R")))

	access, err := app.Store.Get(ctx, credstore.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "A", access)
	refresh, err := app.Cookies.Get(ctx, cookie.RefreshTokenName)
	require.NoError(t, err)
	assert.Equal(t, "R", refresh)

	require.NoError(t, app.Run(ctx, mustParse(t, "logout")))

	_, err = app.Store.Get(ctx, credstore.AccessTokenKey)
	assert.ErrorIs(t, err, credstore.ErrNotFound)
	refresh, err = app.Cookies.Get(ctx, cookie.RefreshTokenName)
	require.NoError(t, err)
	assert.Empty(t, refresh)
}

func TestRun_LogoutWhenEmpty(t *testing.T) {
	app, _, _ := newApp()
	assert.NoError(t, app.Run(context.Background(), mustParse(t, "logout")))
}

func TestRun_TokenStatus(t *testing.T) {
	app, _, out := newApp()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	app.Now = func() time.Time { return now }

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user@example.com",
		"id":  42,
		"exp": now.Add(90 * time.Minute).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, app.Run(ctx, mustParse(t, "login", "-access", raw, "-refresh", "R")))
	out.Reset()

	require.NoError(t, app.Run(ctx, mustParse(t, "token", "status")))

	assert.Contains(t, out.String(), "subject:     user@example.com")
	assert.Contains(t, out.String(), "user id:     42")
	assert.Contains(t, out.String(), "(in 1h30m0s)")
	assert.Contains(t, out.String(), "refresh token: present")
}

func TestRun_TokenStatusEmpty(t *testing.T) {
	app, _, out := newApp()

	require.NoError(t, app.Run(context.Background(), mustParse(t, "token", "status")))

	assert.Contains(t, out.String(), "access token:  none")
	assert.Contains(t, out.String(), "refresh token: none")
}

func TestRun_TokenStatusOpaque(t *testing.T) {
	app, _, out := newApp()
	ctx := context.Background()
	require.NoError(t, app.Store.Set(ctx, credstore.AccessTokenKey, "opaque"))

	require.NoError(t, app.Run(ctx, mustParse(t, "token", "status")))

	assert.Contains(t, out.String(), "access token:  unreadable")
}
