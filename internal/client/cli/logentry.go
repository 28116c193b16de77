package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/minetrack/plodsync/internal/client/models"
	"github.com/minetrack/plodsync/internal/timex"
)

func (a *App) recordLog(ctx context.Context) {
	plodID, err := GetSimpleText(a.reader, "Enter plod id", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	startRaw, err := GetSimpleText(a.reader, "Start time (RFC3339, empty = 1h ago)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	endRaw, err := GetSimpleText(a.reader, "End time (RFC3339, empty = now)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	end := time.Now()
	if endRaw != "" {
		if end = timex.Parse(endRaw); end.IsZero() {
			fmt.Fprintln(a.out, "Invalid end time")
			return
		}
	}
	start := end.Add(-time.Hour)
	if startRaw != "" {
		if start = timex.Parse(startRaw); start.IsZero() {
			fmt.Fprintln(a.out, "Invalid start time")
			return
		}
	}

	var items []models.LoggedDataItem
	for _, d := range a.dataService.Definitions() {
		if len(d.LinkedPlods) > 0 && !contains(d.LinkedPlods, plodID) {
			continue
		}
		value, err := GetSimpleText(a.reader, fmt.Sprintf("%s [%s] (empty to skip)", d.Name, d.Unit), a.out)
		if err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
			return
		}
		if value == "" {
			continue
		}
		items = append(items, models.LoggedDataItem{
			DefinitionID: d.ID, Name: d.Name, Value: value, Unit: d.Unit,
		})
	}

	coworkers, err := GetList(a.reader, "Coworker user ids", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	signedRaw, err := GetSimpleText(a.reader, "Disclaimer signed? (y/n)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	entry, err := a.dataService.RecordLog(ctx, a.token, plodID, start, end, items, coworkers, signedRaw == "y")
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Logged %s, %d min, shift %s\n", entry.PlodName, entry.Duration/60, entry.Shift)
}

func (a *App) listLogs() {
	for _, l := range a.dataService.Logs() {
		fmt.Fprintf(a.out, "%s  %s  %s  %s  %dmin  %s\n",
			l.ID, l.Shift, l.PlodName, l.UserName, l.Duration/60, l.EndTime)
	}
}

func (a *App) attachSignature(ctx context.Context) {
	path, err := GetSimpleText(a.reader, "Path of signature image file", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	image, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	key, err := a.signatures.Attach(ctx, a.token, image)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Signature stored as %s\n", key)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
