// Package api exposes the booking HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"bookdesk/internal/models"
)

// ScheduleProvider reads the current schedule configuration.
type ScheduleProvider interface {
	Current() models.ScheduleConfig
}

// SlotsProvider computes booked slots for a date.
type SlotsProvider interface {
	BookedForDate(ctx context.Context, date string) ([]models.Slot, error)
}

// Booker runs the booking flow.
type Booker interface {
	Book(ctx context.Context, req models.BookingRequest) (models.Event, error)
}

// Reporter writes a monthly booking report.
type Reporter interface {
	WriteMonth(ctx context.Context, month string, w io.Writer) error
}

// HTTPServer serves the booking API.
type HTTPServer struct {
	server   *http.Server
	schedule ScheduleProvider
	slots    SlotsProvider
	bookings Booker
	reports  Reporter // optional; export disabled when nil
	apiKey   string   // guards the export endpoint
	logger   zerolog.Logger
}

// Config holds the server wiring.
type Config struct {
	Addr        string
	Schedule    ScheduleProvider
	Slots       SlotsProvider
	Bookings    Booker
	Reports     Reporter
	AdminAPIKey string
	RateRPS     float64
	RateBurst   int
}

// NewHTTPServer builds the server with CORS, request logging and per-IP rate
// limiting on the booking endpoint.
func NewHTTPServer(cfg Config, logger zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		schedule: cfg.Schedule,
		slots:    cfg.Slots,
		bookings: cfg.Bookings,
		reports:  cfg.Reports,
		apiKey:   cfg.AdminAPIKey,
		logger:   logger.With().Str("component", "api").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/booked-slots", s.handleBookedSlots)
	mux.HandleFunc("/api/book-appointment", s.handleBookAppointment)
	mux.HandleFunc("/api/export", s.handleExport)

	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 10
	}

	handler := s.requestLog(corsMiddleware(newRateLimiter(rps, burst).middleware(mux)))
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler returns the composed handler, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("API server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
