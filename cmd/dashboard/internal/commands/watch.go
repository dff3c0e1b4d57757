package commands

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"visitr/internal/dashboard"
)

type WatchCmd struct {
	Status  string        `help:"Only show guests in this state (signed-in, signed-out, expired)" default:""`
	Limit   int           `help:"Number of guests to display" default:"50"`
	Refresh time.Duration `help:"Data refresh interval" default:"10s"`
	Expiry  time.Duration `help:"Overdue scan interval" default:"1s"`
}

const clearScreen = "\033[H\033[2J"

func (c *WatchCmd) Run(ctx context.Context, globals *Globals) error {
	client, session, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	defer session.Clear()

	var mu sync.Mutex
	draw := func(snap dashboard.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(os.Stdout, clearScreen)
		dashboard.Render(os.Stdout, session.Organization(), snap, time.Now())
		fmt.Fprintln(os.Stdout, "\nPress Ctrl+C to stop.")
	}

	watcher := dashboard.NewWatcher(client, session, dashboard.NewStore(), dashboard.WatcherOptions{
		ExpiryInterval:  c.Expiry,
		RefreshInterval: c.Refresh,
		PageSize:        c.Limit,
		Status:          c.Status,
		OnUpdate:        draw,
	})

	if err := watcher.Start(ctx); err != nil {
		watcher.Stop()
		return err
	}
	<-ctx.Done()
	watcher.Stop()
	return nil
}
