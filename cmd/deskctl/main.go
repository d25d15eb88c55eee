package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matheus3301/wppdesk/internal/app"
	"github.com/matheus3301/wppdesk/internal/billing"
	"github.com/matheus3301/wppdesk/internal/config"
	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/profile"
	"github.com/matheus3301/wppdesk/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

var (
	profileFlag string
	jsonFlag    bool
	debugFlag   bool
)

func main() {
	root := &cobra.Command{
		Use:           "deskctl",
		Short:         "Scriptable access to helpdesk tickets and invoices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&profileFlag, "profile", "", "profile name (overrides config default)")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "log at debug level")

	root.AddCommand(
		newTicketCmd(),
		newTicketsCmd(),
		newInvoiceCmd(),
		newInvoicesCmd(),
		newFollowCmd(),
		newLoginCmd(),
		newOutboxCmd(),
		newProfilesCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// core holds what a command needs from the core module.
type core struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Store    *store.DB
	Helpdesk *helpdesk.Client
	Billing  *billing.HTTPClient
}

// withCore starts the core module for the resolved profile, runs fn and
// stops the module. fn gets a context cancelled on SIGINT/SIGTERM.
func withCore(fn func(ctx context.Context, c core) error) error {
	name := profile.Resolve(profileFlag)
	if err := profile.ValidateName(name); err != nil {
		return err
	}

	var c core
	a := fx.New(
		app.Core(app.Params{Profile: name, Debug: debugFlag}),
		fx.NopLogger,
		fx.Populate(&c),
	)
	if err := a.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_ = a.Stop(stopCtx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, c)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
