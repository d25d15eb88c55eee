// Package app wires the desk client with fx.
package app

import (
	"context"
	"time"

	"github.com/matheus3301/wppdesk/internal/auth"
	"github.com/matheus3301/wppdesk/internal/billing"
	"github.com/matheus3301/wppdesk/internal/bus"
	"github.com/matheus3301/wppdesk/internal/config"
	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/lock"
	"github.com/matheus3301/wppdesk/internal/logging"
	"github.com/matheus3301/wppdesk/internal/outbox"
	"github.com/matheus3301/wppdesk/internal/profile"
	"github.com/matheus3301/wppdesk/internal/realtime"
	"github.com/matheus3301/wppdesk/internal/store"
	"github.com/matheus3301/wppdesk/internal/ticketview"
	"github.com/matheus3301/wppdesk/internal/tui"
	"github.com/matheus3301/wppdesk/internal/tui/model"
	"github.com/matheus3301/wppdesk/internal/tui/ui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const bootstrapTimeout = 10 * time.Second

// Params holds the resolved profile and command line options.
type Params struct {
	Profile string
	// TicketID, when non-zero, is opened as soon as the UI starts.
	TicketID int64
	Debug    bool
}

// Core provides config, logging, the local store and backend clients. The
// CLI uses it on its own; the UI builds on it.
func Core(p Params) fx.Option {
	return fx.Module("core",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStore,
			provideHelpdesk,
			provideBilling,
		),
		fx.Invoke(registerCoreLifecycle),
	)
}

// Module returns the fx module for the desk UI, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Options(
		Core(p),
		fx.Module("deskui",
			fx.Provide(
				provideLock,
				provideSession,
				provideDialer,
				provideSender,
				provideController,
				provideTickets,
				provideTUI,
			),
			fx.Invoke(registerLifecycle),
		),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.LoadEnv(profile.EnvPath(p.Profile), ".env")
	return cfg, nil
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	return logging.New(profile.LogPath(p.Profile), p.Profile, logging.Options{Debug: p.Debug})
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DBPath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

// provideHelpdesk builds the backend client with the env token, falling back
// to the one persisted by the last session.
func provideHelpdesk(cfg *config.Config, db *store.DB, logger *zap.Logger) (*helpdesk.Client, error) {
	token := cfg.DeskToken
	if token == "" {
		stored, err := db.Setting(store.KeyToken)
		if err != nil {
			return nil, err
		}
		token = stored
	}
	return helpdesk.NewClient(cfg.BackendURL, token, logger), nil
}

func provideBilling(cfg *config.Config, logger *zap.Logger) *billing.HTTPClient {
	if cfg.BillingToken == "" {
		logger.Warn("billing token not set", zap.String("env", config.EnvBillingToken))
	}
	return billing.NewHTTPClient(cfg.BillingURL, cfg.BillingToken, logger)
}

func registerCoreLifecycle(lc fx.Lifecycle, db *store.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			_ = logger.Sync()
			return nil
		},
	})
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideSession depends on the lock so only one process refreshes and
// persists the session of a profile.
func provideSession(cfg *config.Config, client *helpdesk.Client, db *store.DB, _ *lock.Lock, logger *zap.Logger) (*auth.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()
	s, err := auth.Bootstrap(ctx, client, db, cfg.DeskToken, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("session ready",
		zap.Int64("user_id", s.User.ID),
		zap.String("profile", s.User.Profile),
		zap.Int64("tenant", s.Tenant),
		zap.Bool("cached", s.Cached))
	return s, nil
}

func provideDialer(cfg *config.Config, client *helpdesk.Client, logger *zap.Logger) realtime.Dialer {
	return &realtime.WSDialer{URL: cfg.SocketURL, Token: client.Token, Logger: logger}
}

func provideSender(db *store.DB, client *helpdesk.Client, b *bus.Bus, logger *zap.Logger) *outbox.Sender {
	return outbox.NewSender(db, client, b, logger)
}

func provideController(cfg *config.Config, s *auth.Session, client *helpdesk.Client, bc *billing.HTTPClient, d realtime.Dialer, sender *outbox.Sender, db *store.DB, b *bus.Bus, logger *zap.Logger) *ticketview.Controller {
	user := s.User
	return ticketview.New(ticketview.Deps{
		Fetcher: client,
		Billing: bc,
		Dialer:  d,
		Outbox:  sender,
		History: db,
		Bus:     b,
		Logger:  logger,
	}, ticketview.Options{
		User:       &user,
		Tenant:     s.Tenant,
		Debounce:   cfg.Debounce(),
		ChargeCode: int64(cfg.ChargeCode),
	})
}

func provideTickets(client *helpdesk.Client, s *auth.Session) *model.Tickets {
	return model.NewTickets(client, ticketQuery(s.User))
}

// ticketQuery lists open tickets in the agent's queues; admins see all.
func ticketQuery(u helpdesk.User) helpdesk.TicketQuery {
	q := helpdesk.TicketQuery{Status: helpdesk.StatusOpen, ShowAll: u.IsAdmin()}
	for _, queue := range u.Queues {
		q.QueueIDs = append(q.QueueIDs, queue.ID)
	}
	return q
}

func provideTUI(p Params, cfg *config.Config, s *auth.Session, ctrl *ticketview.Controller, tickets *model.Tickets, sender *outbox.Sender, b *bus.Bus, logger *zap.Logger) *tui.App {
	return tui.NewApp(ctrl, tickets, sender, b, tui.Options{
		Agent: ui.AgentData{
			Profile: p.Profile,
			Agent:   s.User.Name,
			Role:    s.User.Profile,
			Tenant:  s.Tenant,
			Backend: cfg.BackendURL,
			Cached:  s.Cached,
		},
		UserID: s.User.ID,
		Logger: logger,
	})
}

func registerLifecycle(lc fx.Lifecycle, sd fx.Shutdowner, p Params, app *tui.App, ctrl *ticketview.Controller, sender *outbox.Sender, lk *lock.Lock, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sender.Start(ctx)

			go func() {
				defer close(done)
				if err := ctrl.Run(ctx); err != nil {
					logger.Error("ticket view stopped", zap.Error(err))
				}
			}()

			go func() {
				if err := app.Run(p.TicketID); err != nil {
					logger.Error("tui error", zap.Error(err))
				}
				_ = sd.Shutdown()
			}()

			logger.Info("desk started", zap.Int64("ticket_id", p.TicketID))
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			app.Stop()
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			sender.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("desk stopped")
			return nil
		},
	})
}
