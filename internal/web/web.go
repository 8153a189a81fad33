// Package web exposes the loaded feed over HTTP: events JSON with
// month-scoped program enrichment, the next-event countdown, and an
// iCalendar export consumers can subscribe to.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	ics "github.com/arran4/golang-ical"

	"sheetcal/internal/config"
	"sheetcal/internal/feed"
	appLog "sheetcal/internal/log"
	"sheetcal/internal/model"
	"sheetcal/internal/sheet"
	"sheetcal/internal/timing"
)

// feedCacheTTL bounds how stale a lazily-served feed snapshot may get
// between cron refreshes.
const feedCacheTTL = 15 * time.Minute

// Server provides the HTTP API over the feed orchestrator.
type Server struct {
	cfg *config.Config
	svc *feed.Service
	loc *time.Location
	mux *http.ServeMux

	// Snapshot of the last feed load, shared between the cron refresh
	// and request handlers.
	mu       sync.RWMutex
	snapshot *feedSnapshot
}

// feedSnapshot holds one loaded feed and its provenance.
type feedSnapshot struct {
	events   []model.Event
	sample   bool
	loadedAt time.Time
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, svc *feed.Service, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		cfg: cfg,
		svc: svc,
		loc: loc,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable for probes.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="sheetcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/next", s.handleNext)
	s.mux.HandleFunc("/calendar.ics", s.handleICS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Refresh performs a bulk feed load and replaces the shared snapshot.
// Called by the cron schedule and lazily when no snapshot exists yet.
func (s *Server) Refresh(ctx context.Context) {
	events, fromSample := s.svc.LoadFeed(ctx)

	s.mu.Lock()
	s.snapshot = &feedSnapshot{
		events:   events,
		sample:   fromSample,
		loadedAt: time.Now(),
	}
	s.mu.Unlock()

	appLog.Info("feed snapshot refreshed", "events", len(events), "sample", fromSample)
}

// currentSnapshot returns the shared snapshot, loading the feed first if
// none exists or the last one has gone stale.
func (s *Server) currentSnapshot(ctx context.Context) feedSnapshot {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if snap == nil || time.Since(snap.loadedAt) > feedCacheTTL {
		s.Refresh(ctx)
		s.mu.RLock()
		snap = s.snapshot
		s.mu.RUnlock()
	}
	return *snap
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Events     []model.Event `json:"events"`
	SampleData bool          `json:"sampleData"`
	Year       int           `json:"year"`
	Month      int           `json:"month"`
	PastEvents int           `json:"pastEvents"`
	LoadedAt   time.Time     `json:"loadedAt"`
}

// handleEvents returns the loaded feed enriched for one month.
//
// GET /api/events?year=2025&month=1
//
// year/month default to the current month. Program enrichment runs for
// exactly the requested month on every request; re-viewing a month
// re-fetches its programs rather than reusing earlier results.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().In(s.loc)

	q := r.URL.Query()
	year := parseIntDefault(q.Get("year"), now.Year())
	month := time.Month(parseIntDefault(q.Get("month"), int(now.Month())))
	if month < time.January || month > time.December {
		writeError(w, http.StatusBadRequest, "month must be 1-12")
		return
	}

	snap := s.currentSnapshot(ctx)
	enriched := s.svc.EnrichProgramsForMonth(ctx, snap.events, year, month)

	writeJSON(w, http.StatusOK, eventsResponse{
		Events:     enriched,
		SampleData: snap.sample,
		Year:       year,
		Month:      int(month),
		PastEvents: timing.CountPastInMonth(enriched, year, month, now),
		LoadedAt:   snap.loadedAt,
	})
}

// nextResponse is the JSON response shape for /api/next.
type nextResponse struct {
	Event     *model.Event      `json:"event"`
	Status    timing.Status     `json:"status,omitempty"`
	Countdown *timing.Countdown `json:"countdown,omitempty"`
	Color     *model.EventColor `json:"color,omitempty"`
}

// displayColor resolves the color an event renders with: the explicit
// palette color when the feed assigned one, otherwise the deterministic
// hash fallback. Derived here so the event JSON itself keeps explicit
// and derived colors distinguishable.
func displayColor(ev model.Event) model.EventColor {
	if ev.Color != nil {
		return *ev.Color
	}
	return sheet.FallbackColor(ev.ID)
}

// handleNext returns the nearest future timed event and its countdown.
// Clients re-poll this to drive a ticking display; the countdown is
// recomputed from the wall clock on every call.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(s.loc)
	snap := s.currentSnapshot(r.Context())

	idx := timing.NextEvent(snap.events, now)
	if idx < 0 {
		writeJSON(w, http.StatusOK, nextResponse{})
		return
	}

	ev := snap.events[idx]
	color := displayColor(ev)
	writeJSON(w, http.StatusOK, nextResponse{
		Event:     &ev,
		Status:    timing.Classify(ev, now),
		Countdown: timing.CountdownTo(ev, now),
		Color:     &color,
	})
}

// handleICS serves the loaded feed as an iCalendar subscription.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	snap := s.currentSnapshot(r.Context())

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//sheetcal//calendar feed//EN")

	now := time.Now().In(s.loc)
	for _, ev := range snap.events {
		ve := cal.AddEvent(ev.ID + "@sheetcal")
		ve.SetDtStampTime(now)
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}

		if start, ok := timing.StartAt(ev, s.loc); ok {
			ve.SetStartAt(start)
			ve.SetEndAt(timing.EndAt(ev, s.loc))
		} else {
			ve.SetAllDayStartAt(ev.Date.StartOfDay(s.loc))
			ve.SetAllDayEndAt(ev.Date.StartOfDay(s.loc).AddDate(0, 0, 1))
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(cal.Serialize()))
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
