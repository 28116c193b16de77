package cli

import (
	"context"
	"fmt"
)

func (a *App) sync(ctx context.Context) {
	res, err := a.dataService.Sync(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Sync failed: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Synced: pushed %d, pulled %d, remapped %d, purged %d\n",
		res.Pushed, res.Pulled, res.Remapped, res.Purged)
}

func (a *App) status(ctx context.Context) {
	fmt.Fprintf(a.out, "Mode: %s\n", a.Mode)
	fmt.Fprintf(a.out, "Pending changes: %v\n", a.dataService.NeedsSync())
	if at, ok := a.dataService.LastSyncAt(ctx); ok {
		fmt.Fprintf(a.out, "Last sync: %s\n", at.Local().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintln(a.out, "Last sync: never")
	}
}
