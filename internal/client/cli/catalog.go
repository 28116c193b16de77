package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/minetrack/plodsync/internal/client/models"
)

func (a *App) listPlods() {
	for _, p := range a.dataService.Plods() {
		fmt.Fprintf(a.out, "%s  %s\n", p.ID, p.Name)
	}
}

func (a *App) addPlod(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Enter plod name", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if err := a.dataService.SavePlod(ctx, a.token, &models.Plod{Name: name}); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func (a *App) deletePlod(ctx context.Context) {
	id, err := GetSimpleText(a.reader, "Enter plod id to delete", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if err := a.dataService.DeletePlod(ctx, a.token, id); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func (a *App) listDefinitions() {
	for _, d := range a.dataService.Definitions() {
		fmt.Fprintf(a.out, "%s  %s (%s)\n", d.ID, d.Name, d.Unit)
	}
}

func (a *App) addDefinition(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Enter definition name", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	unit, err := GetSimpleText(a.reader, "Enter unit", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	linked, err := GetList(a.reader, "Linked plod ids", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	d := &models.Definition{Name: name, Unit: unit, LinkedPlods: linked}
	if err := a.dataService.SaveDefinition(ctx, a.token, d); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func (a *App) deleteDefinition(ctx context.Context) {
	id, err := GetSimpleText(a.reader, "Enter definition id to delete", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if err := a.dataService.DeleteDefinition(ctx, a.token, id); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func (a *App) listUsers() {
	for _, u := range a.dataService.Users() {
		fmt.Fprintf(a.out, "%s  %s  %s/%s\n", u.ID, u.Name, u.SystemRole, u.OperationalRole)
	}
}

func (a *App) addUser(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	role, err := GetSimpleText(a.reader, "System role (Admin/Operator)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	opRole, err := GetSimpleText(a.reader, "Operational role", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	allowed, err := GetList(a.reader, "Allowed plod ids", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	systemRole := models.RoleOperator
	if strings.EqualFold(role, string(models.RoleAdmin)) {
		systemRole = models.RoleAdmin
	}

	u := &models.UserProfile{
		Name:            name,
		SystemRole:      systemRole,
		OperationalRole: opRole,
		AllowedPlods:    allowed,
	}
	if err := a.dataService.SaveUser(ctx, a.token, u); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}
