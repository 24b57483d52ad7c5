// ABOUTME: Account commands: login, logout, register and whoami
// ABOUTME: Drive the session manager and persist the token through the configured store

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Modhak129/WEB-freelance/internal/forms"
	"github.com/Modhak129/WEB-freelance/internal/session"
)

var (
	loginEmail       string
	loginPassword    string
	registerUsername string
	registerEmail    string
	registerPassword string
	registerRole     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Run: func(cmd *cobra.Command, args []string) {
		if loginPassword == "" {
			if err := promptPassword(&loginPassword); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				os.Exit(exitError)
			}
		}
		exit(func(ctx context.Context) int {
			return runLogin(ctx, os.Stdout, loginEmail, loginPassword)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		exit(func(ctx context.Context) int { return runLogout(ctx, os.Stdout) })
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a marketplace account",
	Long:  `Create an account. Registration does not log you in; run "freelance login" afterwards.`,
	Run: func(cmd *cobra.Command, args []string) {
		exit(func(ctx context.Context) int {
			return runRegister(ctx, os.Stdout, forms.RegisterForm{
				Username:     registerUsername,
				Email:        registerEmail,
				Password:     registerPassword,
				IsFreelancer: registerRole == "freelancer",
			}, registerRole)
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Run: func(cmd *cobra.Command, args []string) {
		exit(func(ctx context.Context) int { return runWhoami(ctx, os.Stdout) })
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerUsername, "username", "", "Public username")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password, at least 6 characters")
	registerCmd.Flags().StringVar(&registerRole, "role", "freelancer", "freelancer or client")
}

func promptPassword(out *string) error {
	return huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(out).
		Run()
}

// runLogin exchanges credentials for a token and returns the exit code
func runLogin(ctx context.Context, w io.Writer, email, password string) int {
	form := forms.LoginForm{Email: strings.TrimSpace(email), Password: password}
	if err := form.Validate(); err != nil {
		return fail(w, err)
	}

	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	if _, err := e.session.Login(ctx, form.Email, form.Password); err != nil {
		if errors.Is(err, session.ErrCredentials) {
			fmt.Fprintln(w, strings.TrimPrefix(err.Error(), session.ErrCredentials.Error()+": "))
			return exitRefused
		}
		return fail(w, err)
	}

	s := e.session.Current()
	if IsJSONOutput() {
		writeJSON(w, s.User)
	} else {
		fmt.Fprintf(w, "Logged in as %s (%s)\n", s.User.Username, s.User.Role())
	}
	return exitOK
}

// runLogout clears the stored session
func runLogout(ctx context.Context, w io.Writer) int {
	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	if err := e.session.Logout(ctx); err != nil {
		return fail(w, err)
	}
	fmt.Fprintln(w, "Logged out.")
	return exitOK
}

// runRegister creates an account without logging in
func runRegister(ctx context.Context, w io.Writer, form forms.RegisterForm, role string) int {
	if role != "freelancer" && role != "client" {
		fmt.Fprintf(w, "Error: role must be freelancer or client, got %q\n", role)
		return exitRefused
	}
	req, err := form.Request()
	if err != nil {
		return fail(w, err)
	}

	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	if _, err := e.session.Register(ctx, req); err != nil {
		if errors.Is(err, session.ErrCredentials) {
			fmt.Fprintln(w, strings.TrimPrefix(err.Error(), session.ErrCredentials.Error()+": "))
			return exitRefused
		}
		return fail(w, err)
	}
	fmt.Fprintf(w, "Account created. Log in with: freelance login --email %s\n", req.Email)
	return exitOK
}

type whoamiOutput struct {
	ID        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// runWhoami validates the stored token and prints the user
func runWhoami(ctx context.Context, w io.Writer) int {
	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	s, code := e.authenticate(ctx, w)
	if code != exitOK {
		return code
	}

	out := whoamiOutput{ID: s.User.ID, Username: s.User.Username, Email: s.User.Email, Role: s.User.Role()}
	if exp, ok := session.ExpiresAt(s.Token); ok {
		out.ExpiresAt = &exp
	}

	if IsJSONOutput() {
		writeJSON(w, out)
		return exitOK
	}
	fmt.Fprintln(w, formatWhoami(out))
	return exitOK
}

func formatWhoami(out whoamiOutput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)", out.Username, out.Role)
	if out.Email != "" {
		fmt.Fprintf(&sb, "\nEmail:    %s", out.Email)
	}
	if out.ExpiresAt != nil {
		fmt.Fprintf(&sb, "\nSession:  expires %s", humanize.Time(*out.ExpiresAt))
	}
	return sb.String()
}
