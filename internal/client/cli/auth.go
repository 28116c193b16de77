package cli

import (
	"context"
	"fmt"
)

func (a *App) login(ctx context.Context) {
	userID, err := GetSimpleText(a.reader, "Enter user id or badge number", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	pin, err := GetPIN(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	token, user, err := a.authService.Login(ctx, userID, pin)
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		return
	}

	a.token = token
	a.user = user
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Name, user.SystemRole)
}

func (a *App) logout() {
	a.token = ""
	a.user = nil
	fmt.Fprintln(a.out, "Logged out")
}

func (a *App) setPIN(ctx context.Context) {
	userID, err := GetSimpleText(a.reader, "Enter user id", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	pin, err := GetPIN(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if err := a.authService.SetPIN(ctx, a.token, userID, pin); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "PIN updated")
}
