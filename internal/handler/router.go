package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prospectly/billing-service/internal/processor"
	"github.com/prospectly/billing-service/internal/schedule"
	"github.com/prospectly/billing-service/internal/store"
)

// Config holds HTTP surface settings.
type Config struct {
	Addr           string   `env:"HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://app.prospectly.com,http://localhost:3000"`
}

// WebhookProcessor handles one raw webhook delivery.
type WebhookProcessor interface {
	Process(ctx context.Context, payload []byte, sigHeader string) (*processor.Result, error)
}

// ScheduleCreator provisions a founding-member checkout.
type ScheduleCreator interface {
	Create(ctx context.Context, req schedule.Request) (*schedule.Result, error)
}

type router struct {
	proc       WebhookProcessor
	creator    ScheduleCreator
	deliveries store.DeliveryStore
	healthz    func(context.Context) error
	log        *slog.Logger
}

// NewRouter builds the HTTP routing tree for the billing service.
func NewRouter(
	cfg Config,
	proc WebhookProcessor,
	creator ScheduleCreator,
	deliveries store.DeliveryStore,
	healthz func(context.Context) error,
	log *slog.Logger,
) http.Handler {
	rt := &router{
		proc:       proc,
		creator:    creator,
		deliveries: deliveries,
		healthz:    healthz,
		log:        log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(cfg.AllowedOrigins))

	r.Get("/health", rt.handleHealth)
	r.Post("/webhooks/stripe", rt.handleWebhook)
	r.Post("/billing/schedules", rt.handleCreateSchedule)
	r.Get("/admin/deliveries", rt.handleListDeliveries)

	return r
}
