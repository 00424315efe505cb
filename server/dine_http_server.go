package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dine-server/logger"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const SHUTDOWN_TIMEOUT = 5 * time.Second

type DineHttpServer struct {
	router         *Router
	muxRouter      *mux.Router
	port           string
	allowedOrigins []string
	onShutdown     []func()
}

func NewDineHttpServer(router *Router, muxRouter *mux.Router, port string, allowedOrigins []string) *DineHttpServer {
	return &DineHttpServer{
		router:         router,
		muxRouter:      muxRouter,
		port:           port,
		allowedOrigins: allowedOrigins,
	}
}

// OnShutdown registers f to run when the server starts shutting down, before
// open connections are drained. Event streams are ended this way.
func (s *DineHttpServer) OnShutdown(f func()) {
	s.onShutdown = append(s.onShutdown, f)
}

// Handler registers the routes and returns the full middleware chain.
func (s *DineHttpServer) Handler() http.Handler {
	s.router.RegisterRoutes()
	s.muxRouter.Use(logger.RequestLogger)

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", logger.RequestIDHeader},
		ExposedHeaders: []string{logger.RequestIDHeader},
	})
	return c.Handler(s.muxRouter)
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *DineHttpServer) Start() {
	log := logger.Component("DineHttpServer")

	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	for _, f := range s.onShutdown {
		srv.RegisterOnShutdown(f)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	<-stop
	log.Info("shutting down the server")

	ctx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
