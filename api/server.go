package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"verynews/agent"
	"verynews/pkg/metrics"
	"verynews/pkg/reportstore"

	"go.uber.org/zap"
)

// Judger runs the fact-checking pipeline.
type Judger interface {
	Run(ctx context.Context, news string) (*agent.Result, error)
}

// Archive persists finished runs. *reportstore.Store satisfies it.
type Archive interface {
	Save(id string, createdAt time.Time, v any) error
	Load(id string, v any) error
	List(limit int) ([]reportstore.Entry, error)
}

// Server represents the API server
type Server struct {
	judge   Judger
	archive Archive
	logger  *zap.Logger
	addr    string
}

// NewServer creates a new API server. archive may be nil, in which case runs
// are not kept and the report endpoints answer 404.
func NewServer(judge Judger, archive Archive, logger *zap.Logger, addr string) *Server {
	return &Server{
		judge:   judge,
		archive: archive,
		logger:  logger,
		addr:    addr,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /judge", s.handleJudge)
	mux.HandleFunc("GET /reports", s.handleListReports)
	mux.HandleFunc("GET /reports/{id}", s.handleGetReport)
	mux.Handle("GET /metrics", metrics.Handler())

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
