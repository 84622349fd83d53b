package main

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/hisab/internal/auth"
	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/config"
	"github.com/mmynk/hisab/internal/events"
	"github.com/mmynk/hisab/internal/metrics"
	"github.com/mmynk/hisab/internal/middleware"
	"github.com/mmynk/hisab/internal/report"
	"github.com/mmynk/hisab/internal/service"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/pkg/api"
)

// newHandler mounts every service, the report download and the
// operational endpoints on one mux.
func newHandler(store storage.Store, publisher events.Publisher, m *metrics.Metrics, gatherer prometheus.Gatherer, cfg *config.Config) http.Handler {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	notifier := events.NewNotifier(store, publisher, m)

	// Metrics wraps auth so rejected calls are counted; logging runs inside
	// auth so it sees the user.
	optionalAuth := connect.WithInterceptors(
		middleware.MetricsInterceptor(m), middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor())
	requireAuth := connect.WithInterceptors(
		middleware.MetricsInterceptor(m), middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor())

	ledger := service.NewLedgerService(store, notifier,
		service.WithMetrics(m),
		service.WithCurrency(cfg.Currency),
		service.WithCalculatorOptions(calculator.Options{SplitMiscellaneous: cfg.SplitMisc}),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, store, nil), optionalAuth))
	mux.Handle(api.NewGroupServiceHandler(service.NewGroupService(store, notifier), requireAuth))
	mux.Handle(api.NewLedgerServiceHandler(ledger, requireAuth))
	mux.Handle(api.NewNotificationServiceHandler(service.NewNotificationService(store, notifier), requireAuth))
	mux.Handle(api.NewCashBookServiceHandler(service.NewCashBookService(store), requireAuth))

	mux.Handle(report.ArchivePath, middleware.RequireAuthHTTP(jwtManager, report.NewHandler(ledger, cfg.Currency)))
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	return middleware.LogRequests(middleware.CORS(mux))
}
