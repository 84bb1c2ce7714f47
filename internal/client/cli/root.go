package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.gate != nil {
		if a.online() {
			s += "online"
		} else {
			s += "offline"
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root prints the banner, restores the previous session and runs the REPL.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to TrailKeeper CLI (type 'help' for commands)")

	sess, err := a.sessions.Restore(ctx)
	if err != nil {
		a.logger.Error(ctx, "restore session", "error", err)
	} else if sess.UserID > 0 {
		a.session = sess
		if _, u, err := a.sessions.Current(ctx); err == nil && u != nil {
			a.userName = u.Email
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
