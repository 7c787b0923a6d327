package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/twitchalerts/internal/domain"
	apimw "github.com/hamed0406/twitchalerts/internal/httpapi/middleware"
	"github.com/hamed0406/twitchalerts/internal/scheduler"
)

// StatusSource is satisfied by *scheduler.Scheduler.
type StatusSource interface {
	Status() scheduler.Status
}

type Server struct {
	Logger *zap.Logger
	Source StatusSource
	Tokens []string
}

func NewServer(l *zap.Logger, src StatusSource, tokens []string) *Server {
	return &Server{Logger: l, Source: src, Tokens: tokens}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RequireToken(s.Tokens))
		r.Get("/status", s.handleStatus)
		r.Get("/channels", s.handleChannels)
	})

	return r
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.Logger.Info("status_listen", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type channelView struct {
	Name   string                `json:"name"`
	Live   bool                  `json:"live"`
	URL    string                `json:"url"`
	Stream *domain.ChannelStatus `json:"stream,omitempty"`
}

type statusView struct {
	State       scheduler.State `json:"state"`
	NextScanAt  *time.Time      `json:"next_scan_at,omitempty"`
	LastCycleAt *time.Time      `json:"last_cycle_at,omitempty"`
	Channels    []channelView   `json:"channels"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Source.Status()
	v := statusView{State: st.State, Channels: channelViews(st)}
	if !st.NextScanAt.IsZero() {
		v.NextScanAt = &st.NextScanAt
	}
	if !st.LastCycleAt.IsZero() {
		v.LastCycleAt = &st.LastCycleAt
	}
	writeJSON(w, v)
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, channelViews(s.Source.Status()))
}

func channelViews(st scheduler.Status) []channelView {
	live := make(map[string]domain.ChannelStatus, len(st.Live))
	for _, ch := range st.Live {
		live[ch.Name] = ch
	}

	names := make([]string, 0, len(st.Snapshot))
	for n := range st.Snapshot {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]channelView, 0, len(names))
	for _, n := range names {
		v := channelView{Name: n, Live: st.Snapshot[n], URL: domain.ChannelStatus{Name: n}.URL()}
		if ch, ok := live[n]; ok {
			ch := ch
			v.Stream = &ch
		}
		out = append(out, v)
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
