package main

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jrsteele09/go-job-portal/internal/config"
	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/jrsteele09/go-job-portal/session"
	"github.com/jrsteele09/go-job-portal/users"
	"github.com/spf13/cobra"
)

func loginCmd(c config.Config) *cobra.Command {
	var creds users.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if creds.Username, err = prompt("Username", creds.Username); err != nil {
				return err
			}
			if creds.Password == "" {
				creds.Password = os.Getenv("PORTAL_PASSWORD")
			}
			if creds.Password, err = prompt("Password", creds.Password); err != nil {
				return err
			}

			ps, err := openSession(cmd.Context(), c)
			if err != nil {
				return err
			}
			defer ps.close()

			if err := ps.manager.Login(cmd.Context(), creds); err != nil {
				return userError(ps.manager, err)
			}
			snap := ps.manager.Snapshot()
			success("Signed in as %s", displayName(snap))
			printRefreshDeadline(ps.manager)
			return nil
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Account password (or PORTAL_PASSWORD)")
	return cmd
}

func signupCmd(c config.Config) *cobra.Command {
	var reg users.Registration
	var dob string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account (does not sign in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dob != "" {
				parsed, err := users.ParseDate(dob)
				if err != nil {
					return err
				}
				reg.DateOfBirth = parsed
			}

			ps, err := openSession(cmd.Context(), c)
			if err != nil {
				return err
			}
			defer ps.close()

			created, err := ps.manager.Register(cmd.Context(), reg)
			if err != nil {
				return userError(ps.manager, err)
			}
			info("account id %d", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&dob, "dob", "", "Date of birth (dd-MM-yyyy)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(c config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := openSession(cmd.Context(), c)
			if err != nil {
				return err
			}
			defer ps.close()

			ps.manager.Logout()
			success("Signed out")
			return nil
		},
	}
}

func whoamiCmd(c config.Config) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := openSession(cmd.Context(), c)
			if err != nil {
				return err
			}
			defer ps.close()

			if force {
				if err := ps.manager.EnsureCurrentUser(cmd.Context(), true); err != nil {
					return err
				}
			}
			snap := ps.manager.Snapshot()
			if !snap.Authenticated() {
				return perrors.ErrNotAuthenticated
			}
			info("user:  %s", displayName(snap))
			if u := snap.Session.User; u != nil {
				info("id:    %d", u.ID)
				info("roles: %v", u.Roles)
			}
			info("state: %s", snap.State)
			printRefreshDeadline(ps.manager)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reload the profile from the backend")
	return cmd
}

func refreshCmd(c config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rotate the stored token pair now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := openSession(cmd.Context(), c)
			if err != nil {
				return err
			}
			defer ps.close()

			if err := ps.manager.Refresh(cmd.Context()); err != nil {
				return err
			}
			success("Tokens refreshed")
			printRefreshDeadline(ps.manager)
			return nil
		},
	}
}

// watchCmd keeps the process alive so silent refresh runs on schedule
func watchCmd(c config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the session alive with silent refresh until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := openSession(cmd.Context(), c)
			if err != nil {
				return err
			}
			defer ps.close()

			if !ps.manager.Snapshot().Authenticated() {
				return perrors.ErrNotAuthenticated
			}

			ended := make(chan struct{})
			var endOnce sync.Once
			unsubscribe := ps.manager.Subscribe(func(s session.Snapshot) {
				info("%s  %s", time.Now().Format(time.TimeOnly), s.State)
				if s.State == session.StateAuthenticated {
					printRefreshDeadline(ps.manager)
				}
				if s.State == session.StateAnonymous {
					endOnce.Do(func() { close(ended) })
				}
			})
			defer unsubscribe()

			printRefreshDeadline(ps.manager)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case <-ctx.Done():
				return nil
			case <-ended:
				return errors.New("session ended")
			}
		},
	}
}

// userError prefers the message the manager surfaced to the user
func userError(m *session.Manager, err error) error {
	if msg := m.TakeError(); msg != "" {
		return errors.New(msg)
	}
	return err
}

func displayName(snap session.Snapshot) string {
	if snap.Session.User == nil {
		return "(profile not loaded)"
	}
	return snap.Session.User.DisplayName()
}

func printRefreshDeadline(m *session.Manager) {
	if deadline, ok := m.RefreshDeadline(); ok {
		info("next refresh at %s (in %s)", deadline.Format(time.RFC3339), time.Until(deadline).Round(time.Second))
	}
}
