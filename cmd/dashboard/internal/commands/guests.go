package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"visitr/internal/dashboard"
)

type GuestsCmd struct {
	Status string `help:"Only show guests in this state (signed-in, signed-out, expired)" default:""`
	Limit  int    `help:"Number of guests to display" default:"50"`
}

func (c *GuestsCmd) Run(ctx context.Context, globals *Globals) error {
	client, session, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	token, err := session.Token()
	if err != nil {
		return err
	}

	guests, err := client.ListGuests(ctx, token, c.Status, c.Limit)
	if err != nil {
		return fmt.Errorf("failed to list guests: %w", err)
	}
	return dashboard.Render(os.Stdout, session.Organization(), dashboard.Snapshot{Guests: guests}, time.Now())
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx context.Context, globals *Globals) error {
	client, session, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	token, err := session.Token()
	if err != nil {
		return err
	}

	stats, err := client.Stats(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	fmt.Printf("Total guests:           %d\n", stats.TotalGuests)
	fmt.Printf("Currently signed in:    %d\n", stats.ActiveGuests)
	fmt.Printf("Signed in today:        %d\n", stats.TodayGuests)
	fmt.Printf("Pending ID assignments: %d\n", stats.PendingIDAssignments)
	return nil
}

type SignOutCmd struct {
	GuestID string `arg:"" help:"Guest ID to sign out"`
}

func (c *SignOutCmd) Run(ctx context.Context, globals *Globals) error {
	client, session, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	token, err := session.Token()
	if err != nil {
		return err
	}

	if err := client.SignOut(ctx, token, c.GuestID); err != nil {
		return fmt.Errorf("failed to sign out guest: %w", err)
	}
	fmt.Printf("Guest %s signed out\n", c.GuestID)
	return nil
}
