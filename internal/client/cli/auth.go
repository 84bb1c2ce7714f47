package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a name, email, phone and password and creates a
// local account, linked to a remote identity when the server is reachable.
func (a *App) Register(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.sessions.Register(ctx, name, email, phone, password)
	if err != nil {
		return err
	}

	if u.FirebaseUID == nil {
		printlnFn("Registered locally; the account is linked on the next online login.")
	} else {
		printlnFn("Success!")
	}
	return nil
}

// Login signs in and adopts hikes recorded while signed out. With the server
// unreachable the login is local only and sync stays disabled.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.sessions.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrLocalDataNotAvailable) {
			return fmt.Errorf("no local account for %s and the server is unreachable", email)
		}
		return err
	}

	a.session = sess
	a.userName = email
	if sess.HasIdentity() {
		printlnFn("Login successful")
	} else {
		printlnFn("Logged in locally (sync unavailable)")
	}
	return nil
}

// Logout signs out and wipes local hikes, including unsynced ones.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.sessions.SignOut(ctx); err != nil {
		return err
	}
	a.session = models.Session{}
	a.userName = ""
	printlnFn("Logged out")
	return nil
}
