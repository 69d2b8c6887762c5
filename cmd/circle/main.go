package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/circle/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override circle config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	refreshSeconds := flag.Int("refresh", 0, "refresh interval in seconds when realtime is unavailable (optional, defaults to 30s)")
	dump := flag.Bool("dump", false, "hydrate once, print the state as JSON and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Dump:       *dump,
		Out:        os.Stdout,
	}
	if refresh := *refreshSeconds; refresh > 0 {
		opts.RefreshEvery = refresh
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "circle: %v\n", err)
		return 1
	}
	return 0
}
