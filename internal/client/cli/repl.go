package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. Every command
// receives the words following its name.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	AddHike(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Purge(ctx context.Context, args []string) error
	Start(ctx context.Context, args []string) error
	End(ctx context.Context, args []string) error
	AddObservation(ctx context.Context, args []string) error
	DeleteObservation(ctx context.Context, args []string) error
	Attach(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, addhike, (l)ist, show, addobs, delobs, delete, purge, start, end, search, filter, exit"
	helpSignedIn  = "Available commands: addhike, (l)ist, show, addobs, delobs, attach, delete, purge, start, end, search, filter, sync, download, logout, exit"
)

// runREPL reads commands line by line from r and dispatches them to a
// until EOF, "exit" or "quit". Command errors are printed and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("tk %s> ", statusFn()))

		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var run func(context.Context, []string) error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}
			continue
		case "register":
			run = a.Register
		case "login":
			run = a.Login
		case "logout":
			run = a.Logout
		case "addhike":
			run = a.AddHike
		case "l", "list":
			run = a.List
		case "show":
			run = a.Show
		case "delete":
			run = a.Delete
		case "purge":
			run = a.Purge
		case "start":
			run = a.Start
		case "end":
			run = a.End
		case "addobs":
			run = a.AddObservation
		case "delobs":
			run = a.DeleteObservation
		case "attach":
			run = a.Attach
		case "search":
			run = a.Search
		case "filter":
			run = a.Filter
		case "sync":
			run = a.Sync
		case "download":
			run = a.Download
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if err := run(ctx, args); err != nil {
			printlnFn("error:", err)
		}
	}
}
