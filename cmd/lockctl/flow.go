package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
	"github.com/dropDatabas3/hellojohn-lock/internal/oauth/callback"
	"github.com/dropDatabas3/hellojohn-lock/internal/oauth/loopback"
	"github.com/dropDatabas3/hellojohn-lock/internal/oauth/state"
	"github.com/dropDatabas3/hellojohn-lock/internal/oauth/webflow"
	"github.com/dropDatabas3/hellojohn-lock/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-lock/internal/providers"
	"github.com/dropDatabas3/hellojohn-lock/internal/util"
)

func authorizeURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "authorize-url <connection>",
		Short: "Arma la URL de autorización para una connection (no abre el navegador)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			defer c.Close()
			acct := c.Account()
			at, err := state.NewAttempt(state.NewGuard())
			if err != nil {
				return err
			}
			u, err := callback.BuildAuthorizationURI(acct.AuthorizeURL, callback.AuthorizeParams{
				Connection:  args[0],
				State:       at.State,
				ClientID:    acct.ClientID,
				RedirectURI: acct.CallbackURI(),
				ClientInfo:  acct.ClientInfo,
				Extra:       a.cfg.Options.AuthParameters(),
			})
			if err != nil {
				return err
			}
			res := map[string]string{"url": u.String(), "state": at.State, "attempt_id": at.ID}
			a.print(res, func() []string { return []string{u.String()} })
			return nil
		},
	}
}

func parseCallbackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse-callback <uri>",
		Short: "Muestra los parámetros de un redirect (query o fragment), con tokens enmascarados",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := callback.ParseCallbackString(args[0])
			if err != nil {
				return err
			}
			masked := make(map[string]string, len(vals))
			for k, v := range vals {
				switch k {
				case callback.KeyIDToken, callback.KeyAccessToken, callback.KeyRefreshToken:
					v = util.MaskToken(v)
				}
				masked[k] = v
			}
			a.print(masked, func() []string {
				out := make([]string, 0, len(masked))
				for _, k := range sortedKeys(masked) {
					out = append(out, k+"="+masked[k])
				}
				return out
			})
			return nil
		},
	}
}

// attemptLauncher avisa al receiver qué intento está en curso antes de abrir el navegador.
type attemptLauncher struct {
	rc   *loopback.Receiver
	next webflow.Launcher
}

func (l attemptLauncher) Launch(ctx context.Context, req webflow.LaunchRequest) error {
	l.rc.SetAttempt(req.AttemptID)
	logger.S().Infow("abriendo navegador", "connection", req.Connection, "redirect_uri", req.RedirectURI)
	return l.next.Launch(ctx, req)
}

func (l attemptLauncher) Cancel() { l.next.Cancel() }

func loginCmd(a *app) *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "login <connection>",
		Short: "Hace el login web completo usando el navegador y un callback en loopback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			results := make(chan webflow.RedirectResult, 4)
			rc := loopback.New("/callback", func(r webflow.RedirectResult) {
				select {
				case results <- r:
				default:
				}
			})
			srv, err := loopback.Listen(addr, rc)
			if err != nil {
				return err
			}
			defer func() {
				sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer scancel()
				_ = srv.Shutdown(sctx)
			}()
			a.cfg.Account.RedirectURI = srv.RedirectURI()

			c, err := a.client()
			if err != nil {
				return err
			}
			defer c.Close()

			name := args[0]
			c.Providers().RegisterFactory(name, func(connection.Connection) (providers.Provider, error) {
				return c.NewWebAuthorization(webflow.Options{
					UseBrowser: true,
					Browser:    attemptLauncher{rc: rc, next: webflow.BrowserLauncher{}},
				}), nil
			})
			p, err := c.StartLogin(ctx, name)
			if err != nil {
				return err
			}
			defer p.Stop()

			for {
				select {
				case <-ctx.Done():
					return fmt.Errorf("login: %w", ctx.Err())
				case r := <-results:
					out, err := p.Authorize(ctx, r)
					if err != nil {
						return err
					}
					if !out.Handled {
						continue
					}
					if out.Err != nil {
						return out.Err
					}
					return a.printToken(out)
				}
			}
		},
	}
	cmd.Flags().StringVar(&addr, "listen", "127.0.0.1:0", "Dirección del callback loopback")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Tiempo máximo de espera del redirect")
	return cmd
}

func (a *app) printToken(out webflow.Outcome) error {
	if out.Token == nil {
		return errors.New("login: sin token")
	}
	res := map[string]any{
		"status":       out.Status.String(),
		"token_type":   out.Token.TokenType,
		"access_token": util.MaskToken(out.Token.AccessToken),
		"id_token":     util.MaskToken(out.Token.IDToken),
	}
	if sub, err := out.Token.Subject(); err == nil {
		res["sub"] = sub
	}
	if exp, err := out.Token.ExpiresAt(); err == nil {
		res["expires_at"] = exp.UTC().Format(time.RFC3339)
	}
	a.print(res, func() []string {
		lines := []string{"login ok"}
		for _, k := range sortedKeys(res) {
			lines = append(lines, fmt.Sprintf("  %s: %v", k, res[k]))
		}
		return lines
	})
	return nil
}
