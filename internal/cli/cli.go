// Package cli parses the blogctl command line and runs the selected action.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Commands.
const (
	CmdCreate      = "create"
	CmdModify      = "modify"
	CmdDelete      = "delete"
	CmdLogin       = "login"
	CmdLogout      = "logout"
	CmdTokenStatus = "token status"
)

// ModifyPagePath is the page the edit form lives on; the article id rides in its query.
const ModifyPagePath = "/new-article"

// ErrUsage is returned for an unknown or missing command.
var ErrUsage = errors.New("usage: blogctl [-yes] <create|modify|delete|login|logout|token status> [flags]")

// Args is one parsed invocation.
type Args struct {
	Command string

	// Yes answers every confirmation with yes.
	Yes bool

	// ID is the article id for delete.
	ID string
	// Page is the edit page URL for modify; its id query parameter names the article.
	Page *url.URL

	Title   string
	Content string

	// Access and Refresh seed the credentials on login.
	Access  string
	Refresh string

	RawArgs []string
}

// ParseArgs parses args (without the program name). It does not read os.Args.
func ParseArgs(args []string) (*Args, error) {
	global := flag.NewFlagSet("blogctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	yes := global.Bool("yes", false, "answer yes to every confirmation")
	if err := global.Parse(args); err != nil {
		return nil, err
	}

	rest := global.Args()
	if len(rest) == 0 {
		return nil, ErrUsage
	}

	out := &Args{Yes: *yes, RawArgs: args}
	name, rest := rest[0], rest[1:]
	if name == "token" {
		if len(rest) == 0 || rest[0] != "status" {
			return nil, fmt.Errorf("unknown token subcommand: %w", ErrUsage)
		}
		name, rest = CmdTokenStatus, rest[1:]
	}
	out.Command = name

	fs := flag.NewFlagSet("blogctl "+name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&out.Yes, "yes", out.Yes, "answer yes to every confirmation")

	var id, page string
	switch name {
	case CmdCreate:
		fs.StringVar(&out.Title, "title", "", "article title")
		fs.StringVar(&out.Content, "content", "", "article content")
	case CmdModify:
		fs.StringVar(&id, "id", "", "article id")
		fs.StringVar(&page, "page", "", "edit page URL carrying ?id=")
		fs.StringVar(&out.Title, "title", "", "article title")
		fs.StringVar(&out.Content, "content", "", "article content")
	case CmdDelete:
		fs.StringVar(&out.ID, "id", "", "article id (required)")
	case CmdLogin:
		fs.StringVar(&out.Access, "access", "", "access token (required)")
		fs.StringVar(&out.Refresh, "refresh", "", "refresh token")
	case CmdLogout, CmdTokenStatus:
	default:
		return nil, fmt.Errorf("unknown command %q: %w", name, ErrUsage)
	}

	if err := fs.Parse(rest); err != nil {
		return nil, err
	}

	switch name {
	case CmdModify:
		p, err := modifyPage(id, page)
		if err != nil {
			return nil, err
		}
		out.Page = p
	case CmdDelete:
		if strings.TrimSpace(out.ID) == "" {
			return nil, fmt.Errorf("missing required -id argument")
		}
	case CmdLogin:
		if strings.TrimSpace(out.Access) == "" {
			return nil, fmt.Errorf("missing required -access argument")
		}
	}
	return out, nil
}

// modifyPage returns the edit page for the article, from -page or built from -id.
func modifyPage(id, page string) (*url.URL, error) {
	switch {
	case page != "" && id != "":
		return nil, fmt.Errorf("-id and -page are mutually exclusive")
	case page != "":
		u, err := url.Parse(page)
		if err != nil {
			return nil, fmt.Errorf("invalid -page: %w", err)
		}
		if u.Query().Get("id") == "" {
			return nil, fmt.Errorf("-page %q has no id query parameter", page)
		}
		return u, nil
	case strings.TrimSpace(id) != "":
		return &url.URL{Path: ModifyPagePath, RawQuery: url.Values{"id": {id}}.Encode()}, nil
	default:
		return nil, fmt.Errorf("missing required -id or -page argument")
	}
}
