package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/wppdesk/internal/app"
	"github.com/matheus3301/wppdesk/internal/profile"
	"github.com/matheus3301/wppdesk/internal/tui"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	debugFlag := flag.Bool("debug", false, "log at debug level")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: deskui [--profile <name>] [--debug] [ticket-id]")
		flag.PrintDefaults()
	}
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var ticketID int64
	if flag.NArg() > 0 {
		id, err := tui.ParseTicketID(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		ticketID = id
	}

	// fx logs to stderr, which the TUI owns once it starts.
	a := fx.New(
		app.Module(app.Params{Profile: profileName, TicketID: ticketID, Debug: *debugFlag}),
		fx.NopLogger,
	)
	if err := a.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	a.Run()
}
