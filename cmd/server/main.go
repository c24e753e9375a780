package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prospectly/billing-service/internal/billing"
	"github.com/prospectly/billing-service/internal/handler"
	"github.com/prospectly/billing-service/internal/notify"
	"github.com/prospectly/billing-service/internal/processor"
	"github.com/prospectly/billing-service/internal/schedule"
	"github.com/prospectly/billing-service/internal/store"
	"github.com/prospectly/billing-service/pkg/config"
	"github.com/prospectly/billing-service/pkg/email"
	"github.com/prospectly/billing-service/pkg/httpserver"
	"github.com/prospectly/billing-service/pkg/logger"
	"github.com/prospectly/billing-service/pkg/pg"
)

type appConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

func main() {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, "billing-service"))
	logger.SetAsDefault(log)

	if err := run(context.Background(), appCfg, log); err != nil {
		log.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	var (
		dbCfg      pg.Config
		billingCfg billing.Config
		emailCfg   email.Config
		notifyCfg  notify.Config
		httpCfg    handler.Config
	)
	config.MustLoad(&dbCfg)
	config.MustLoad(&billingCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&notifyCfg)
	config.MustLoad(&httpCfg)

	pool, err := pg.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, dbCfg, log); err != nil {
		return err
	}

	billingClient, err := billing.NewClient(billingCfg)
	if err != nil {
		return err
	}
	verifier, err := billing.NewVerifier(billingCfg.WebhookSecret)
	if err != nil {
		return err
	}

	sender, err := newEmailSender(appCfg.Environment, emailCfg, log)
	if err != nil {
		return err
	}
	notifier := notify.New(sender, notifyCfg)

	users := store.NewPgUserStore(pool)
	events := store.NewPgEventStore(pool)
	deliveries := store.NewPgDeliveryStore(pool)

	proc := processor.New(
		verifier,
		billingClient,
		billingClient.Catalog(),
		users,
		events,
		deliveries,
		notifier,
		log.With("component", "processor"),
	)

	creator := schedule.New(
		billingClient,
		users,
		billingCfg.FoundingIntroPriceID,
		log.With("component", "schedule"),
	)

	router := handler.NewRouter(httpCfg, proc, creator, deliveries, pg.Healthcheck(pool), log)

	srv := httpserver.New(
		httpserver.WithAddr(httpCfg.Addr),
		httpserver.WithLogger(log.With("component", "http")),
	)
	return srv.Run(ctx, router)
}

// newEmailSender picks Postmark in production and the file-based sender
// everywhere else, so local runs never hit the real mail provider.
func newEmailSender(environment string, cfg email.Config, log *slog.Logger) (email.EmailSender, error) {
	if environment == "production" || environment == "prod" {
		return email.NewPostmarkClient(cfg)
	}
	log.Info("using development email sender", "dir", cfg.DevOutputDir)
	return email.NewDevSender(cfg.DevOutputDir), nil
}
