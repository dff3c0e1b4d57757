package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"visitr/cmd/dashboard/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		commands.Globals

		Watch   commands.WatchCmd   `cmd:"" default:"1" help:"Live dashboard with auto sign-out of overdue guests"`
		Guests  commands.GuestsCmd  `cmd:"" help:"List guests once"`
		Stats   commands.StatsCmd   `cmd:"" help:"Show dashboard statistics"`
		SignOut commands.SignOutCmd `cmd:"" name:"signout" help:"Sign a guest out"`
		Version kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("visitr-dashboard"),
		kong.Description("Operator dashboard for visitr."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&cli.Globals)
	cmd.FatalIfErrorf(err)
}
