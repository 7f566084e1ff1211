package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/signmanager/internal/client/client"
	"github.com/dmitrijs2005/signmanager/internal/common"
)

// Prompt seams, replaced in tests.
var (
	askLine   = ReadLine
	askSecret = ReadSecret
)

// Register prompts for email, display name and password and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	email, err := askLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}

	displayName, err := askLine(a.reader, a.out, "Display name (optional)")
	if err != nil {
		return err
	}

	password, err := askSecret(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.client.Register(ctx, email, displayName, password); err != nil {
		if errors.Is(err, client.ErrAlreadyExists) {
			fmt.Fprintln(a.out, "Email already registered")
		} else {
			fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		}
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := askLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}

	password, err := askSecret(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	sess, err := a.client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(a.out, "Invalid email or password")
		} else {
			fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		}
		return err
	}

	a.session = sess
	fmt.Fprintf(a.out, "Logged in as %s (token valid until %s)\n", sess.Email, sess.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

// WhoAmI asks the server who the current token belongs to. A rejected
// token ends the local session.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return client.ErrNotLoggedIn
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	p, err := a.client.WhoAmI(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.client.Logout()
			a.session = nil
			fmt.Fprintln(a.out, "Session expired, please log in again")
		} else {
			fmt.Fprintf(a.out, "Request failed: %v\n", err)
		}
		return err
	}

	if p.DisplayName != "" {
		fmt.Fprintf(a.out, "%s (%s)\n", p.Email, p.DisplayName)
	} else {
		fmt.Fprintln(a.out, p.Email)
	}
	return nil
}

func (a *App) Logout(_ context.Context) error {
	a.client.Logout()
	a.session = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Server unreachable: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Server is reachable")
	return nil
}
