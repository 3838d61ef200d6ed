// Package cli implements the interactive shell over the identity core. It
// plays the role the desktop windows played: login form with remembered
// credentials, auto-login on startup, and a prompt to re-authenticate when
// the session expires.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ordermaster/identity/internal/auth"
	"github.com/ordermaster/identity/internal/config"
	"github.com/ordermaster/identity/internal/filex"
	"github.com/ordermaster/identity/internal/logging"
	"github.com/ordermaster/identity/internal/session"
	"github.com/ordermaster/identity/internal/users"
	"github.com/ordermaster/identity/internal/vault"
)

type App struct {
	config   *config.Config
	auth     *auth.Service
	store    *users.Store
	sessions *session.Controller
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp wires the identity components over the configured data directory.
func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	store := users.NewStore(filepath.Join(dir, "users.json"), log)
	v := vault.New(dir, cfg.AutoLoginTTL, log)

	sessions := session.NewController(session.RealClock(), log)
	sessions.SetTimeout(cfg.SessionTimeout)
	sessions.SetCheckInterval(cfg.CheckInterval)

	return &App{
		config:   cfg,
		auth:     auth.NewService(store, v, sessions, log),
		store:    store,
		sessions: sessions,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run attempts auto-login, installs the expiry handler, and enters the REPL.
func (a *App) Run(ctx context.Context) {
	a.auth.OnSessionExpired(func(u *users.User) {
		fmt.Fprintf(a.out, "\nSession for %s expired, please sign in again.\n", u.FullName)
	})

	if user := a.auth.TryAutoLogin(); user != nil {
		fmt.Fprintf(a.out, "Automatically signed in as %s\n", user.FullName)
	} else if saved := a.auth.SavedLoginForm(); saved != nil {
		fmt.Fprintf(a.out, "Remembered account: %s (type 'login' to sign in)\n", saved.Username)
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	a.sessions.End(session.EndManual)
}

func (a *App) isLoggedIn() bool {
	return a.sessions.IsLoggedIn()
}

func (a *App) status() string {
	if u := a.auth.CurrentUser(); u != nil {
		return u.Username
	}
	return "signed out"
}
