package articles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Checker-Finance/blogctl/internal/dispatch"
)

// ArticlesPath is the collection endpoint, relative to the base URL.
const ArticlesPath = "api/articles"

// Draft is the article body sent on create and update.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Dispatcher is the subset of dispatch.Dispatcher the client needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request, onSuccess, onFailure func()) dispatch.Result
}

// Client maps article operations onto the blog API.
type Client struct {
	disp Dispatcher
}

// NewClient constructs a Client.
func NewClient(disp Dispatcher) *Client {
	return &Client{disp: disp}
}

// Create posts a new article.
// POST api/articles
func (c *Client) Create(ctx context.Context, draft Draft, onSuccess, onFailure func()) dispatch.Result {
	body, err := json.Marshal(draft)
	if err != nil {
		return failed(err, onFailure)
	}
	return c.disp.Dispatch(ctx, dispatch.Request{
		Method: http.MethodPost,
		URL:    ArticlesPath,
		Body:   body,
	}, onSuccess, onFailure)
}

// Update replaces title and content of an article.
// PUT api/articles/{id}
func (c *Client) Update(ctx context.Context, id string, draft Draft, onSuccess, onFailure func()) dispatch.Result {
	body, err := json.Marshal(draft)
	if err != nil {
		return failed(err, onFailure)
	}
	return c.disp.Dispatch(ctx, dispatch.Request{
		Method: http.MethodPut,
		URL:    itemPath(id),
		Body:   body,
	}, onSuccess, onFailure)
}

// Delete removes an article.
// DELETE api/articles/{id}
func (c *Client) Delete(ctx context.Context, id string, onSuccess, onFailure func()) dispatch.Result {
	return c.disp.Dispatch(ctx, dispatch.Request{
		Method: http.MethodDelete,
		URL:    itemPath(id),
	}, onSuccess, onFailure)
}

func itemPath(id string) string {
	return ArticlesPath + "/" + url.PathEscape(id)
}

func failed(err error, onFailure func()) dispatch.Result {
	if onFailure != nil {
		onFailure()
	}
	return dispatch.Result{Outcome: dispatch.Failure, Err: fmt.Errorf("articles: encode draft: %w", err)}
}
