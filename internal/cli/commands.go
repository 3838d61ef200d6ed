package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ordermaster/identity/internal/auth"
	"github.com/ordermaster/identity/internal/common"
	"github.com/ordermaster/identity/internal/users"
)

// Login runs the interactive sign-in flow, pre-populating the identifier
// from remembered credentials when available.
func (a *App) Login(ctx context.Context) error {
	identifier := ""
	if saved := a.auth.SavedLoginForm(); saved != nil {
		identifier = saved.Username
	}

	entered, err := GetSimpleText(a.reader, promptIdentifier(identifier), a.out)
	if err != nil {
		return err
	}
	if entered != "" {
		identifier = entered
	}

	password, err := GetPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}

	remember, err := GetYesNo(a.reader, "Remember me?", a.out)
	if err != nil {
		common.WipeByteArray(password)
		return err
	}

	res := a.auth.Login(identifier, password, remember)
	if res.Status != auth.LoginSuccess {
		fmt.Fprintf(a.out, "Sign-in failed: %s\n", res.Status)
		return nil
	}

	fmt.Fprintf(a.out, "Welcome back, %s!\n", res.User.FullName)
	return nil
}

func promptIdentifier(saved string) string {
	if saved == "" {
		return "Username or email"
	}
	return fmt.Sprintf("Username or email [%s]", saved)
}

// Register runs the interactive signup flow.
func (a *App) Register(ctx context.Context) error {
	fullName, err := GetSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	suggested := a.store.GenerateUsername(fullName, email)
	username, err := GetSimpleText(a.reader, fmt.Sprintf("Username [%s]", suggested), a.out)
	if err != nil {
		return err
	}
	if username == "" {
		username = suggested
	}

	password, err := GetPassword(a.out, "Choose a password (min 6 chars): ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.auth.Register(auth.Candidate{
		FullName: fullName,
		Email:    email,
		Username: username,
		Password: string(password),
		Role:     users.RoleCustomer,
	})
	if res.Status != auth.RegisterSuccess {
		fmt.Fprintf(a.out, "Registration failed: %s\n", res.Status)
		return nil
	}

	fmt.Fprintf(a.out, "Account #%d created, you can sign in now.\n", res.UserID)
	return nil
}

// Logout ends the session, keeping remembered credentials.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(false)
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// Forget ends the session and clears everything the vault remembered.
func (a *App) Forget(ctx context.Context) error {
	a.auth.Logout(true)
	fmt.Fprintln(a.out, "Signed out and forgot saved credentials.")
	return nil
}

// WhoAmI prints the current account.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.auth.CurrentUser()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> (%s), session expires in %s\n",
		u.FullName, u.Email, u.Role, a.auth.RemainingSessionTime().Round(time.Second))
	return nil
}

// Users lists active accounts.
func (a *App) Users(ctx context.Context) error {
	for _, u := range a.store.ListActive() {
		fmt.Fprintf(a.out, "#%d %-12s %-24s %s\n", u.ID, u.Username, u.Email, u.Role)
	}
	a.sessions.LogActivity("listed users")
	return nil
}

// Search finds accounts by name, email, or username substring.
func (a *App) Search(ctx context.Context) error {
	term, err := GetSimpleText(a.reader, "Search term", a.out)
	if err != nil {
		return err
	}
	for _, u := range a.store.Search(term) {
		fmt.Fprintf(a.out, "#%d %-12s %-24s %s\n", u.ID, u.Username, u.Email, u.FullName)
	}
	a.sessions.LogActivity("searched users")
	return nil
}

// Activities prints the recent activity log, newest first.
func (a *App) Activities(ctx context.Context) error {
	entries := a.sessions.Activities(0, 20)
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No recorded activity.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "[%s] %s: %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.UserName, e.Activity)
	}
	return nil
}

// Extend resets the session clock.
func (a *App) Extend(ctx context.Context) error {
	a.auth.ExtendSession()
	fmt.Fprintf(a.out, "Session extended, %s remaining.\n", a.auth.RemainingSessionTime().Round(time.Second))
	return nil
}

// Reset generates a temporary password for an email address.
func (a *App) Reset(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Account email", a.out)
	if err != nil {
		return err
	}

	generated, ok := a.auth.ResetPassword(email)
	if !ok {
		fmt.Fprintln(a.out, "No account with that email address.")
		return nil
	}

	// shown instead of emailed; delivery is out of scope here
	fmt.Fprintf(a.out, "Temporary password: %s\nChange it after signing in.\n", generated)
	return nil
}
