package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stacked-parking/internal/logging"
	"stacked-parking/internal/parking"
)

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

func NewServer(port string, session *parking.Session, serviceName string) *Server {
	handler := NewHandler(session, serviceName)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      NewRouter(handler, newRegistry(session)),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		handler: handler,
	}
}

func newRegistry(session *parking.Session) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		newLotCollector(session),
	)
	return reg
}

func NewRouter(handler *Handler, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	useMiddleware(r)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/api/parking-lot", func(r chi.Router) {
		r.Post("/", handler.CreateParkingLot)
		r.Delete("/", handler.ResetParkingLot)
		r.Get("/status", handler.GetStatus)
		r.Post("/park", handler.ParkFirstAvailable)

		r.Post("/cars", handler.AddCar)
		r.Route("/cars/{id}", func(r chi.Router) {
			r.Get("/", handler.FindCar)
			r.Post("/exit", handler.ExitCar)
			r.Post("/move", handler.MoveCar)
		})

		r.Route("/lanes/{lane}", func(r chi.Router) {
			r.Post("/park", handler.ParkInLane)
			r.Post("/sort", handler.SortLane)
			r.Post("/move", handler.MoveBetweenLanes)
		})
	})

	return r
}

// useMiddleware installs the middleware stack. Recovery runs inside the
// request span so a recovered panic is recorded on it and the error
// response carries the trace and request IDs.
func useMiddleware(r chi.Router) {
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
}

func (s *Server) Start() error {
	logging.Logger().Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger().Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
