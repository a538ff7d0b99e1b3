package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Vaults(ctx context.Context) error
	MakeVault(ctx context.Context, args []string) error
	Grant(ctx context.Context, args []string) error
	Revoke(ctx context.Context, args []string) error
	Users(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Images(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Gallery(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: login, exit"
	helpLoggedIn  = `Available commands:
  vaults                              list owned and shared vaults
  mkvault <name> [vault-id]           create a vault
  grant <vault-id> <address> [ttl]    share a vault (ttl: 24h or RFC3339 time)
  revoke <vault-id> <address>         stop sharing a vault
  users <vault-id>                    list active grantees
  upload <vault-id> <file>            encrypt and upload an image
  images <vault-id>                   list images
  download <vault-id> <hash>          decrypt one image to the download dir
  gallery <vault-id>                  decrypt every image of a vault
  logout, exit`
)

// runREPL starts a simple read–eval–print loop for the imagevault CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as its arguments, and dispatches to methods on 'a'.
// Unknown commands are reported back to the user. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("iv %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			if isCommand(cmd) {
				printlnFn("Please login first")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "logout":
			_ = a.Logout(ctx)
		case "vaults", "l":
			_ = a.Vaults(ctx)
		case "mkvault":
			_ = a.MakeVault(ctx, args)
		case "grant":
			_ = a.Grant(ctx, args)
		case "revoke":
			_ = a.Revoke(ctx, args)
		case "users":
			_ = a.Users(ctx, args)
		case "upload":
			_ = a.Upload(ctx, args)
		case "images":
			_ = a.Images(ctx, args)
		case "download":
			_ = a.Download(ctx, args)
		case "gallery":
			_ = a.Gallery(ctx, args)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func isCommand(cmd string) bool {
	switch cmd {
	case "logout", "vaults", "l", "mkvault", "grant", "revoke", "users", "upload", "images", "download", "gallery":
		return true
	}
	return false
}
