package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"freezeframe/internal/infrastructure/logging"
	"freezeframe/internal/types"

	"github.com/gorilla/mux"
)

// maxImageBody bounds PNG uploads to /api/ocr/prepare
const maxImageBody = 64 << 20

// Commands is the command surface the server exposes; *app.App satisfies it
type Commands interface {
	GetForegroundProcess() (*types.ForegroundProcess, error)
	SuspendProcess(pid uint32) error
	ResumeProcess(pid uint32) error
	BringWindowToForeground(hwnd uintptr) error
	TakeScreenshot(hwnd uintptr) ([]byte, error)
	PrepareScreenshotForOCR(png []byte, targetHeight uint32) (string, error)
	DefaultOCRHeight() uint32
}

// Server represents the loopback HTTP API server
type Server struct {
	router   *mux.Router
	commands Commands
	logger   logging.Logger
}

// NewServer creates a new API server
func NewServer(commands Commands, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	s := &Server{
		router:   mux.NewRouter(),
		commands: commands,
		logger:   logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes. They are registered on the root
// router so a method mismatch answers 405 instead of 404.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/foreground", s.handleForeground).Methods("GET")

	s.router.HandleFunc("/api/processes/{pid}/suspend", s.handleSuspend).Methods("POST")
	s.router.HandleFunc("/api/processes/{pid}/resume", s.handleResume).Methods("POST")

	s.router.HandleFunc("/api/windows/{hwnd}/activate", s.handleActivate).Methods("POST")
	s.router.HandleFunc("/api/windows/{hwnd}/capture", s.handleCapture).Methods("GET")

	s.router.HandleFunc("/api/ocr/prepare", s.handlePrepare).Methods("POST")

	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on 127.0.0.1:port until ctx is cancelled
func (s *Server) Start(ctx context.Context, port int) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down server", "addr", addr)
		return srv.Shutdown(shutdownCtx)
	}
}

// HTTP Handlers

func (s *Server) handleForeground(w http.ResponseWriter, r *http.Request) {
	proc, err := s.commands.GetForegroundProcess()
	if err != nil {
		s.writeFailure(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, proc)
}

func (s *Server) handleSuspend(w http.ResponseWriter, r *http.Request) {
	s.processCommand(w, r, s.commands.SuspendProcess)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.processCommand(w, r, s.commands.ResumeProcess)
}

func (s *Server) processCommand(w http.ResponseWriter, r *http.Request, fn func(uint32) error) {
	pid, err := strconv.ParseUint(mux.Vars(r)["pid"], 10, 32)
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest)
		return
	}
	if err := fn(uint32(pid)); err != nil {
		s.writeFailure(w, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	hwnd, ok := s.parseHandle(w, r)
	if !ok {
		return
	}
	if err := s.commands.BringWindowToForeground(hwnd); err != nil {
		s.writeFailure(w, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	hwnd, ok := s.parseHandle(w, r)
	if !ok {
		return
	}
	data, err := s.commands.TakeScreenshot(hwnd)
	if err != nil {
		s.writeFailure(w, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	height := s.commands.DefaultOCRHeight()
	if raw := r.URL.Query().Get("height"); raw != "" {
		h, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			s.writeFailure(w, http.StatusBadRequest)
			return
		}
		height = uint32(h)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBody))
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest)
		return
	}

	encoded, err := s.commands.PrepareScreenshotForOCR(body, height)
	if err != nil {
		s.writeFailure(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image": encoded})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseHandle reads {hwnd} as decimal or 0x-prefixed hex
func (s *Server) parseHandle(w http.ResponseWriter, r *http.Request) (uintptr, bool) {
	v, err := strconv.ParseUint(mux.Vars(r)["hwnd"], 0, 64)
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest)
		return 0, false
	}
	return uintptr(v), true
}

// writeFailure sends the opaque failure body; causes are already logged below
func (s *Server) writeFailure(w http.ResponseWriter, status int) {
	s.logger.Debug("Request failed", "status", status)
	writeJSON(w, status, map[string]string{"error": "operation failed"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
