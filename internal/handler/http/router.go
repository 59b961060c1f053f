package http

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/config"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// NewRouter wires the API. JWTService may be nil, in which case the API is
// served without bearer token checks.
func NewRouter(
	cfg config.AppConfig,
	JWTService jwt.Service,
	leaveHandler LeaveHandler,
	deliveryHandler DeliveryHandler,
	fileHandler FileHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.IsDevelopment())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-dashboard"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.FrontendURL, ","),
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  parseLevel(cfg.LogLevel),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/files/*", fileHandler.Serve)

	r.Route("/api/v1", func(r chi.Router) {
		if JWTService != nil {
			// EventSource cannot set headers, so the SSE stream passes ?token=.
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, tokenFromQuery))
			r.Use(middleware.AuthRequired)
		}

		r.Route("/leave", func(r chi.Router) {
			r.Get("/summaries", leaveHandler.ListSummaries)
			r.Route("/reports", func(r chi.Router) {
				r.Get("/", leaveHandler.ListReports)
				r.Get("/export", leaveHandler.ExportReports)
				r.Get("/{staffID}/pdf", leaveHandler.GetReportPDF)
			})
		})

		r.Route("/mail", func(r chi.Router) {
			r.With(chiMiddleware.AllowContentType("application/json")).Post("/send", deliveryHandler.Send)
			r.Post("/send-all", deliveryHandler.SendAll)
			r.Get("/deliveries", deliveryHandler.List)
			r.Get("/events", deliveryHandler.Events)
		})
	})
	return r
}

func tokenFromQuery(r *http.Request) string {
	return r.URL.Query().Get("token")
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
