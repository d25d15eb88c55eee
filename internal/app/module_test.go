package app

import (
	"context"
	"os"
	"testing"

	"github.com/matheus3301/wppdesk/internal/config"
	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/profile"
	"github.com/matheus3301/wppdesk/internal/store"
	"go.uber.org/fx"
)

func TestModuleGraphValid(t *testing.T) {
	if err := fx.ValidateApp(Module(Params{Profile: "test"}), fx.NopLogger); err != nil {
		t.Fatalf("ValidateApp() error = %v", err)
	}
}

func TestCoreLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvDeskToken, "env-token")

	var (
		client *helpdesk.Client
		db     *store.DB
		cfg    *config.Config
	)
	app := fx.New(
		Core(Params{Profile: "test"}),
		fx.NopLogger,
		fx.Populate(&client, &db, &cfg),
	)
	if err := app.Err(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if got := client.Token(); got != "env-token" {
		t.Errorf("client token = %q, want env-token", got)
	}
	if cfg.BackendURL != config.DefaultBackendURL {
		t.Errorf("BackendURL = %q, want default", cfg.BackendURL)
	}
	if err := db.SetSetting(store.KeyToken, "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(profile.LogPath("test")); err != nil {
		t.Errorf("log file not created: %v", err)
	}

	if err := app.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestHelpdeskFallsBackToStoredToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvDeskToken, "")

	var db *store.DB
	first := fx.New(Core(Params{Profile: "p"}), fx.NopLogger, fx.Populate(&db))
	if err := first.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := db.SetSetting(store.KeyToken, "stored"); err != nil {
		t.Fatal(err)
	}
	if err := first.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}

	var client *helpdesk.Client
	second := fx.New(Core(Params{Profile: "p"}), fx.NopLogger, fx.Populate(&client))
	if err := second.Err(); err != nil {
		t.Fatal(err)
	}
	if got := client.Token(); got != "stored" {
		t.Errorf("client token = %q, want stored", got)
	}
	_ = second.Start(context.Background())
	_ = second.Stop(context.Background())
}

func TestTicketQuery(t *testing.T) {
	agent := helpdesk.User{Profile: "user", Queues: []helpdesk.Queue{{ID: 1}, {ID: 4}}}
	q := ticketQuery(agent)
	if q.Status != helpdesk.StatusOpen || q.ShowAll || len(q.QueueIDs) != 2 || q.QueueIDs[1] != 4 {
		t.Errorf("agent query = %+v", q)
	}

	admin := helpdesk.User{Profile: "admin"}
	if q := ticketQuery(admin); !q.ShowAll {
		t.Errorf("admin query = %+v, want ShowAll", q)
	}
}
