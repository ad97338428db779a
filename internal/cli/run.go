package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/blogctl/internal/cookie"
	"github.com/Checker-Finance/blogctl/internal/credstore"
	"github.com/Checker-Finance/blogctl/internal/token"
	"github.com/Checker-Finance/blogctl/internal/ui"
	"github.com/Checker-Finance/blogctl/pkg/utils"
)

// Actions is what the page bindings offer.
type Actions interface {
	Create(ctx context.Context, form ui.Form) error
	Modify(ctx context.Context, page *url.URL, form ui.Form) error
	Delete(ctx context.Context, form ui.Form) error
}

// App runs parsed commands against the bindings and the credential store.
type App struct {
	Logger  *zap.Logger
	Actions Actions
	Store   credstore.Store
	Cookies *cookie.Jar
	Out     io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run executes args. A cancelled confirmation is not an error.
func (a *App) Run(ctx context.Context, args *Args) error {
	var err error
	switch args.Command {
	case CmdCreate:
		err = a.Actions.Create(ctx, ui.FormValues{
			ui.FieldTitle:   args.Title,
			ui.FieldContent: args.Content,
		})
	case CmdModify:
		err = a.Actions.Modify(ctx, args.Page, ui.FormValues{
			ui.FieldTitle:   args.Title,
			ui.FieldContent: args.Content,
		})
	case CmdDelete:
		err = a.Actions.Delete(ctx, ui.FormValues{ui.FieldArticleID: args.ID})
	case CmdLogin:
		err = a.login(ctx, args.Access, args.Refresh)
	case CmdLogout:
		err = a.logout(ctx)
	case CmdTokenStatus:
		err = a.tokenStatus(ctx)
	default:
		err = fmt.Errorf("unknown command %q: %w", args.Command, ErrUsage)
	}

	if errors.Is(err, ui.ErrCancelled) {
		fmt.Fprintln(a.Out, "cancelled")
		return nil
	}
	return err
}

func (a *App) login(ctx context.Context, access, refresh string) error {
	if err := a.Store.Set(ctx, credstore.AccessTokenKey, access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if refresh != "" {
		if err := a.Cookies.Set(ctx, cookie.RefreshTokenName, refresh); err != nil {
			return fmt.Errorf("store refresh token: %w", err)
		}
	}
	a.Logger.Info("cli.login",
		zap.String("access_token", utils.MaskSecret(access)),
		zap.Bool("refresh_token", refresh != ""))
	fmt.Fprintln(a.Out, "credentials saved")
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.Store.Delete(ctx, credstore.AccessTokenKey); err != nil && !errors.Is(err, credstore.ErrNotFound) {
		return fmt.Errorf("delete access token: %w", err)
	}
	if err := a.Cookies.Remove(ctx, cookie.RefreshTokenName); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	a.Logger.Info("cli.logout")
	fmt.Fprintln(a.Out, "credentials cleared")
	return nil
}

func (a *App) tokenStatus(ctx context.Context) error {
	raw, err := a.Store.Get(ctx, credstore.AccessTokenKey)
	if err != nil && !errors.Is(err, credstore.ErrNotFound) {
		return fmt.Errorf("load access token: %w", err)
	}
	refresh, err := a.Cookies.Get(ctx, cookie.RefreshTokenName)
	if err != nil {
		return fmt.Errorf("load refresh token: %w", err)
	}

	if raw == "" {
		fmt.Fprintln(a.Out, "access token:  none")
	} else {
		info, err := token.Inspect(raw)
		if err != nil {
			fmt.Fprintf(a.Out, "access token:  unreadable (%v)\n", err)
		} else {
			a.printInfo(info)
		}
	}
	if refresh == "" {
		fmt.Fprintln(a.Out, "refresh token: none")
	} else {
		fmt.Fprintln(a.Out, "refresh token: present")
	}
	return nil
}

func (a *App) printInfo(info token.Info) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	fmt.Fprintln(a.Out, "access token:  present")
	fmt.Fprintf(a.Out, "  subject:     %s\n", info.Subject)
	if info.UserID != "" {
		fmt.Fprintf(a.Out, "  user id:     %s\n", info.UserID)
	}
	if info.Issuer != "" {
		fmt.Fprintf(a.Out, "  issuer:      %s\n", info.Issuer)
	}
	if !info.IssuedAt.IsZero() {
		fmt.Fprintf(a.Out, "  issued at:   %s\n", info.IssuedAt.UTC().Format(time.RFC3339))
	}
	switch {
	case info.ExpiresAt.IsZero():
		fmt.Fprintln(a.Out, "  expires:     never")
	case info.Expired(now()):
		fmt.Fprintf(a.Out, "  expires:     %s (expired)\n", info.ExpiresAt.UTC().Format(time.RFC3339))
	default:
		fmt.Fprintf(a.Out, "  expires:     %s (in %s)\n",
			info.ExpiresAt.UTC().Format(time.RFC3339),
			info.Remaining(now()).Round(time.Second))
	}
}
