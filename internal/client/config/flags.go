package config

import (
	"flag"
	"os"
	"time"

	"github.com/minetrack/plodsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path of the local sqlite cache file
//	-r string   postgres DSN of the shared backend
//	-m string   gateway mode: postgres or memory
//	-a string   address and port probed for connectivity
//	-i int      online check interval in seconds
//	-s int      auto sync interval in seconds (0 disables)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-m", "-a", "-i", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.LocalDBPath, "d", cfg.LocalDBPath, "path of the local database file")
	fs.StringVar(&cfg.RemoteDSN, "r", cfg.RemoteDSN, "postgres DSN of the shared backend")
	fs.StringVar(&cfg.GatewayMode, "m", cfg.GatewayMode, "gateway mode (postgres or memory)")
	fs.StringVar(&cfg.OnlineAddr, "a", cfg.OnlineAddr, "address and port probed for connectivity")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	autoSyncInterval := fs.Int("s", int(cfg.AutoSyncInterval.Seconds()), "auto sync interval (in seconds, 0 disables)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.AutoSyncInterval = time.Duration(*autoSyncInterval) * time.Second
}
