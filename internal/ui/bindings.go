// Package ui holds the create, modify and delete actions of the article pages.
// Each action optionally asks for confirmation, sends its request through the
// dispatcher, then alerts the outcome and navigates away.
package ui

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/Checker-Finance/blogctl/internal/articles"
	"github.com/Checker-Finance/blogctl/internal/dispatch"
)

// Form field ids and the page query parameter carrying the article id.
const (
	FieldArticleID = "article-id"
	FieldTitle     = "title"
	FieldContent   = "content"
	QueryID        = "id"
)

// ErrCancelled is returned when the user declines the confirmation; no request is sent.
var ErrCancelled = errors.New("ui: cancelled by user")

// Articles is the subset of articles.Client the bindings use.
type Articles interface {
	Create(ctx context.Context, draft articles.Draft, onSuccess, onFailure func()) dispatch.Result
	Update(ctx context.Context, id string, draft articles.Draft, onSuccess, onFailure func()) dispatch.Result
	Delete(ctx context.Context, id string, onSuccess, onFailure func()) dispatch.Result
}

// Bindings wires the page actions to the API.
type Bindings struct {
	logger        *zap.Logger
	articles      Articles
	prompt        Prompter
	nav           Navigator
	msg           *message.Printer
	confirmCreate bool
}

// Option customizes Bindings.
type Option func(*Bindings)

// WithConfirmCreate asks for confirmation before publishing a new article.
func WithConfirmCreate(on bool) Option {
	return func(b *Bindings) { b.confirmCreate = on }
}

// WithPrinter overrides the message printer (Korean by default).
func WithPrinter(p *message.Printer) Option {
	return func(b *Bindings) { b.msg = p }
}

func NewBindings(logger *zap.Logger, arts Articles, prompt Prompter, nav Navigator, opts ...Option) *Bindings {
	b := &Bindings{
		logger:   logger,
		articles: arts,
		prompt:   prompt,
		nav:      nav,
		msg:      NewPrinter(""),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Delete removes the article named by the article-id field, then goes to /articles.
func (b *Bindings) Delete(ctx context.Context, form Form) error {
	id := form.Value(FieldArticleID)

	if !b.prompt.Confirm(b.msg.Sprintf(MsgDeleteConfirm)) {
		b.logger.Debug("ui.delete_cancelled", zap.String("id", id))
		return ErrCancelled
	}

	res := b.articles.Delete(ctx, id,
		b.finish(MsgDeleteDone, "/articles"),
		b.finish(MsgDeleteFailed, "/articles"))
	return b.result("delete", id, res)
}

// Modify saves title and content for the article whose id is in the page's query string,
// then goes back to that article.
func (b *Bindings) Modify(ctx context.Context, page *url.URL, form Form) error {
	id := page.Query().Get(QueryID)

	if !b.prompt.Confirm(b.msg.Sprintf(MsgModifyConfirm)) {
		b.logger.Debug("ui.modify_cancelled", zap.String("id", id))
		return ErrCancelled
	}

	back := "/articles/" + id
	res := b.articles.Update(ctx, id, draftFrom(form),
		b.finish(MsgModifyDone, back),
		b.finish(MsgModifyFailed, back))
	return b.result("modify", id, res)
}

// Create publishes a new article, then goes to /articles.
func (b *Bindings) Create(ctx context.Context, form Form) error {
	if b.confirmCreate && !b.prompt.Confirm(b.msg.Sprintf(MsgCreateConfirm)) {
		b.logger.Debug("ui.create_cancelled")
		return ErrCancelled
	}

	res := b.articles.Create(ctx, draftFrom(form),
		b.finish(MsgCreateDone, "/articles"),
		b.finish(MsgCreateFailed, "/articles"))
	return b.result("create", "", res)
}

// finish builds a callback that alerts key and replaces the location.
func (b *Bindings) finish(key, location string) func() {
	return func() {
		b.prompt.Alert(b.msg.Sprintf(key))
		b.nav.Replace(location)
	}
}

func (b *Bindings) result(action, id string, res dispatch.Result) error {
	if res.OK() {
		b.logger.Info("ui.action_done",
			zap.String("action", action),
			zap.String("id", id),
			zap.Int("refreshes", res.Refreshes))
		return nil
	}
	b.logger.Warn("ui.action_failed",
		zap.String("action", action),
		zap.String("id", id),
		zap.Int("status", res.Status),
		zap.Error(res.Err))
	return res.Err
}

func draftFrom(form Form) articles.Draft {
	return articles.Draft{
		Title:   form.Value(FieldTitle),
		Content: form.Value(FieldContent),
	}
}
