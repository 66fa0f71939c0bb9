package server

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soar/padnav/internal/gamepad"
	"github.com/soar/padnav/internal/hub"
)

// Controller is the part of the gamepad manager the server exposes.
type Controller interface {
	hub.Commander
	Snapshot() gamepad.Snapshot
}

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	ctrl        Controller
	frontendFS  fs.FS
	addr        string
	logger      *zap.SugaredLogger
	httpServer  *http.Server

	// ctx bounds work started by clients, such as calibration.
	ctx    context.Context
	cancel context.CancelFunc
}

func New(h *hub.Hub, b *hub.Broadcaster, ctrl Controller, frontendFS fs.FS, addr string, logger *zap.SugaredLogger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		hub:         h,
		broadcaster: b,
		ctrl:        ctrl,
		frontendFS:  frontendFS,
		addr:        addr,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", handleWebSocket(s.ctx, s.hub, s.broadcaster, s.ctrl, s.logger))
	mux.HandleFunc("/api/status", handleStatus(s.ctrl, s.logger))

	if s.frontendFS != nil {
		mux.Handle("/", staticHandler(s.frontendFS))
	}
	return mux
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Infow("HTTP server listening", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if s.httpServer != nil {
		s.logger.Info("shutting down HTTP server")
		return errors.Wrap(s.httpServer.Shutdown(ctx), "http shutdown")
	}
	return nil
}
