package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/evbridge/meetingd/internal/domain"
	"github.com/evbridge/meetingd/internal/meeting"
	"github.com/evbridge/meetingd/internal/security"
)

// Engine is the read side the server exposes over HTTP.
type Engine interface {
	AvailableCalendars(ctx context.Context) []domain.CalendarInfo
	UpcomingMeetings(ctx context.Context, enabledUIDs []string, limit int, extraEmails []string) []domain.Meeting
	RefreshCalendars(ctx context.Context, enabledUIDs []string)
}

type Server struct {
	engine  Engine
	auth    security.BearerAuth
	log     *slog.Logger
	httpSrv *http.Server

	matcher      *meeting.URLMatcher
	enabledUIDs  []string
	extraEmails  []string
	defaultLimit int
}

type Options struct {
	Engine Engine
	Auth   security.BearerAuth
	Logger *slog.Logger

	URLPatterns  []string
	EnabledUIDs  []string
	ExtraEmails  []string
	DefaultLimit int
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultLimit < 1 {
		opts.DefaultLimit = 5
	}
	s := &Server{
		engine:       opts.Engine,
		auth:         opts.Auth,
		log:          logger,
		matcher:      meeting.NewURLMatcher(opts.URLPatterns),
		enabledUIDs:  opts.EnabledUIDs,
		extraEmails:  opts.ExtraEmails,
		defaultLimit: opts.DefaultLimit,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/calendars", s.handleCalendars)
	mux.HandleFunc("/v1/meetings", s.handleMeetings)
	mux.HandleFunc("/v1/refresh", s.handleRefresh)
	s.httpSrv = &http.Server{Handler: s.wrapAuth(mux), ReadHeaderTimeout: 5 * time.Second}
	return s
}

func (s *Server) ServeTCP(ctx context.Context, bind string) error {
	if bind == "" {
		return errors.New("bind required")
	}
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	go s.shutdownOnContext(ctx)
	return s.httpSrv.Serve(ln)
}

func (s *Server) ServeUnix(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("socket path required")
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return err
	}
	go s.shutdownOnContext(ctx)
	return s.httpSrv.Serve(ln)
}

func (s *Server) wrapAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" && !s.auth.Authorize(r) {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) shutdownOnContext(ctx context.Context) {
	<-ctx.Done()
	timeout, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = s.httpSrv.Shutdown(timeout)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCalendars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	items := s.engine.AvailableCalendars(r.Context())
	if items == nil {
		items = []domain.CalendarInfo{}
	}
	writeJSON(w, http.StatusOK, items)
}

// meetingResponse annotates a meeting with its extracted conferencing link
// and physical location.
type meetingResponse struct {
	domain.Meeting
	MeetingURL       string `json:"meeting_url,omitempty"`
	PhysicalLocation string `json:"physical_location,omitempty"`
}

func (s *Server) handleMeetings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := s.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeErr(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	meetings := s.engine.UpcomingMeetings(r.Context(), s.enabledUIDs, limit, s.extraEmails)
	out := make([]meetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, meetingResponse{
			Meeting:          m,
			MeetingURL:       s.matcher.MeetingURL(m.Location, m.Description),
			PhysicalLocation: s.matcher.PhysicalLocation(m.Location),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.engine.RefreshCalendars(r.Context(), s.enabledUIDs)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
