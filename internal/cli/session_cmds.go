package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/academy-admin/sessions"
	"github.com/jrsteele09/academy-admin/users"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptPassword reads without echo from a terminal, or a single line otherwise.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", errors.Wrap(err, "[promptPassword] read")
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "[promptPassword] read")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			if password == "" {
				var err error
				if password, err = a.readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			user, err := a.ctrl.Login(ctx, email, password)
			if err != nil {
				var loginErr *sessions.LoginError
				if errors.As(err, &loginErr) {
					return errors.New(loginErr.Message)
				}
				return err
			}
			newPrinter(cmd.OutOrStdout(), a.output).Line("Logged in as %s <%s>", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			if err := a.ctrl.Logout(); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), a.output).Line("Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			user := a.ctrl.User()
			if verify {
				ctx, cancel := signalContext(cmd.Context())
				defer cancel()
				var err error
				if user, err = a.ctrl.VerifyRemote(ctx); err != nil {
					return err
				}
			}
			return newPrinter(cmd.OutOrStdout(), a.output).Print(user)
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "Ask the backend instead of trusting the stored profile")
	return cmd
}

// watchCmd keeps the session under re-validation and reports every transition.
func (a *App) watchCmd() *cobra.Command {
	var (
		interval time.Duration
		verify   bool
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the session state until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), a.output)

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			if duration > 0 {
				var stop context.CancelFunc
				ctx, stop = context.WithTimeout(ctx, duration)
				defer stop()
			}

			last := describe(a.ctrl.State(), a.ctrl.User())
			p.Line("session %s", last)
			// Every re-validation passes through checking, only report what it resolves to.
			var lastMu sync.Mutex
			detach := a.ctrl.OnStateChange(func(c sessions.StateChange) {
				if c.To == sessions.StateChecking {
					return
				}
				lastMu.Lock()
				defer lastMu.Unlock()
				if now := describe(c.To, c.User); now != last {
					last = now
					p.Line("session %s (%s)", now, c.Reason)
				}
			})
			defer detach()

			if interval <= 0 {
				interval = a.cfg.GetRevalidateInterval()
			}
			opts := []sessions.SchedulerOption{sessions.WithInterval(interval)}
			if verify {
				opts = append(opts, sessions.WithRemoteVerification())
			}
			scheduler := sessions.NewScheduler(a.ctrl, opts...)
			if err := scheduler.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			scheduler.Stop()
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Re-validation interval (default ACADEMY_REVALIDATE_INTERVAL)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Also ask the backend on every interval")
	cmd.Flags().DurationVar(&duration, "for", 0, "Stop after this long")
	return cmd
}

func describe(state sessions.State, user *users.User) string {
	if state == sessions.StateAuthenticated && user != nil {
		return fmt.Sprintf("%s as %s", state, user.Email)
	}
	return state.String()
}
