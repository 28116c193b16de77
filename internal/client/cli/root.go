package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.user != nil {
		s = a.user.Name + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if a.dataService.NeedsSync() {
		s = s + " *"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to plod CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	a.login(ctx)

	for {
		fmt.Fprintf(a.out, "plod %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: plods, addplod, delplod, defs, adddef, deldef, users, adduser, setpin, log, logs, sign, sync, status, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: login, exit")
			}

		case "login":
			a.login(ctx)
		case "logout":
			a.logout()
		case "plods":
			a.listPlods()
		case "addplod":
			a.addPlod(ctx)
		case "delplod":
			a.deletePlod(ctx)
		case "defs":
			a.listDefinitions()
		case "adddef":
			a.addDefinition(ctx)
		case "deldef":
			a.deleteDefinition(ctx)
		case "users":
			a.listUsers()
		case "adduser":
			a.addUser(ctx)
		case "setpin":
			a.setPIN(ctx)
		case "log":
			a.recordLog(ctx)
		case "logs":
			a.listLogs()
		case "sign":
			a.attachSignature(ctx)
		case "sync":
			a.sync(ctx)
		case "status":
			a.status(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}
