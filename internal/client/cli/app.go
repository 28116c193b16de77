// Package cli implements the operator/admin REPL for the plod client.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/minetrack/plodsync/internal/auth"
	"github.com/minetrack/plodsync/internal/client/config"
	"github.com/minetrack/plodsync/internal/client/data"
	"github.com/minetrack/plodsync/internal/client/models"
	"github.com/minetrack/plodsync/internal/client/services"
	"github.com/minetrack/plodsync/internal/client/store"
	"github.com/minetrack/plodsync/internal/client/syncer"
	"github.com/minetrack/plodsync/internal/logging"
	"github.com/minetrack/plodsync/internal/netx"
	"github.com/minetrack/plodsync/internal/remote"
	"github.com/minetrack/plodsync/internal/remote/memory"
	"github.com/minetrack/plodsync/internal/remote/postgres"
	"github.com/minetrack/plodsync/internal/sigstore"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	store       store.Store
	gateway     remote.Gateway
	authService services.AuthService
	dataService *services.DataService
	signatures  *services.SignatureService
	log         logging.Logger

	token string
	user  *models.UserProfile
	Mode  Mode

	reader *bufio.Reader
	out    *os.File
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewJSON(os.Stderr)

	st, err := store.OpenSQLite(ctx, cfg.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	reg := data.NewRegistry(st, log)
	if err := reg.Hydrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to hydrate collections: %w", err)
	}

	var gw remote.Gateway
	var syncOpts []syncer.Option
	switch cfg.GatewayMode {
	case config.GatewayMemory:
		gw = memory.New()
	default:
		gw, err = postgres.Open(ctx, cfg.RemoteDSN)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to open remote gateway: %w", err)
		}
		syncOpts = append(syncOpts,
			syncer.WithOnlineCheck(netx.Probe(cfg.OnlineAddr, cfg.OnlineCheckInterval)))
	}

	sy := syncer.New(reg, gw, st, log, syncOpts...)
	as := services.NewAuthService(reg, []byte(cfg.SecretKey), cfg.TokenValidity, log)
	ds := services.NewDataService(reg, sy, as, log)
	ss := services.NewSignatureService(sigstore.New(sigstore.Config{
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Bucket:       cfg.S3Bucket,
	}), reg, as, log)

	app := &App{
		config:      cfg,
		store:       st,
		gateway:     gw,
		authService: as,
		dataService: ds,
		signatures:  ss,
		log:         log,
		Mode:        ModeOffline,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}

	// seed a bootstrap admin so a fresh install is usable before the
	// first sync brings the real crew down
	if len(ds.Users()) == 0 {
		app.seedBootstrapAdmin(ctx, reg)
	}

	return app, nil
}

func (a *App) seedBootstrapAdmin(ctx context.Context, reg *data.Registry) {
	hash, err := auth.HashPIN("0000")
	if err != nil {
		return
	}
	reg.Upsert(ctx, data.KindUsers, &models.UserProfile{
		UserID:     "admin",
		Name:       "Bootstrap Admin",
		SystemRole: models.RoleAdmin,
		PINHash:    hash,
	})
	a.log.Info(ctx, "seeded bootstrap admin, PIN 0000; change it after login")
}

func (a *App) isLoggedIn() bool { return a.token != "" }

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

// StartOnlineStatusWatcher flips the online/offline indicator by probing
// the backend address on an interval.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	probe := netx.Probe(a.config.OnlineAddr, interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(context.Background(), interval)
			err := probe(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close()
	defer a.gateway.Close()

	if a.config.GatewayMode != config.GatewayMemory {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}
	if a.config.AutoSyncInterval > 0 {
		go a.dataService.StartAutoSync(ctx, a.config.AutoSyncInterval)
	}

	a.Root(ctx)
}
