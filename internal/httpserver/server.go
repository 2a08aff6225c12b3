// internal/httpserver/server.go
//
// HTTP server wiring for the map quiz backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Session endpoints (optional auth): POST /session/new, POST /session/{id}/guess,
//     POST /session/{id}/skip, GET /session/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + stats endpoints (require auth): /auth/*, /stats/me.
//   - Database persistence for finished runs and per-user stats.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is
//     present; routes can still run for guests.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/mapquiz/go-server/internal/atlas"
	"github.com/mapquiz/go-server/internal/challenge"
	"github.com/mapquiz/go-server/internal/leaderboard"
	"github.com/mapquiz/go-server/internal/quiz"
	"github.com/mapquiz/go-server/internal/rng"
	"github.com/mapquiz/go-server/internal/store"
)

// Server bundles router, in-memory session store, DB handle, and the daily
// challenge provider.
type Server struct {
	r          *chi.Mux
	store      store.Store
	db         *sql.DB
	challenges *challenge.Provider
	lb         *leaderboard.Store
	daily      *dailyRuns
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, challenges *challenge.Provider) *Server {
	s := &Server{
		r:          chi.NewRouter(),
		store:      st,
		db:         db,
		challenges: challenges,
		lb:         leaderboard.NewStore(db),
		daily:      newDailyRuns(),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"mapquiz-go","endpoints":["/health","POST /session/new","POST /session/{id}/guess","/daily","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Session endpoints — OPTIONAL AUTH (guests can play)
	s.r.With(s.withOptionalAuth()).Post("/session/new", s.handleNewSession)
	s.r.With(s.withOptionalAuth()).Post("/session/{id}/guess", s.handleGuess)
	s.r.With(s.withOptionalAuth()).Post("/session/{id}/skip", s.handleSkip)
	s.r.With(s.withOptionalAuth()).Get("/session/{id}", s.handleGetSession)

	// Daily Challenge — OPTIONAL AUTH (guests can play; result recorded for users)
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Auth + stats (require auth)
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	// Debug: atlas pool counts
	s.r.Get("/debug/atlas", func(w http.ResponseWriter, r *http.Request) {
		total, capitals := atlas.Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"territories": total, "withCapitals": capitals})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ SESSIONS -----------------------------------

// newSessionReq/Res payloads for POST /session/new.
type newSessionReq struct {
	Mode       string `json:"mode"`       // "territory" | "flag" | "capital"
	Difficulty string `json:"difficulty"` // "untimed" | "easy" | "medium" | "hard"
	Continent  string `json:"continent"`  // optional pool filter
	Rounds     int    `json:"rounds"`     // optional; default 10, capped at pool size
}

// sessionRes is the common session snapshot returned by all session endpoints.
type sessionRes struct {
	SessionID      string       `json:"sessionId"`
	Mode           string       `json:"mode"`
	Difficulty     string       `json:"difficulty"`
	State          quiz.State   `json:"state"`
	ElapsedSeconds float64      `json:"elapsedSeconds"`
	RoundTimeLeft  float64      `json:"roundTimeLeftSeconds"`
	Skipped        string       `json:"skipped,omitempty"`
	Result         *quiz.Result `json:"result,omitempty"`
}

func (s *Server) sessionSnapshot(sess *store.Session) sessionRes {
	eng := sess.Engine
	st := eng.State()
	res := sessionRes{
		SessionID:      sess.ID,
		Mode:           sess.Mode,
		Difficulty:     string(eng.Difficulty()),
		State:          st,
		ElapsedSeconds: eng.Elapsed().Seconds(),
		RoundTimeLeft:  eng.RoundTimeLeft().Seconds(),
	}
	if st.Ended {
		r := eng.Result()
		res.Result = &r
	}
	return res
}

// poolForMode resolves the target pool for a mode, optionally restricted to a
// continent. Capital mode draws only from territories with a known capital.
func poolForMode(mode, continent string) ([]string, bool) {
	switch mode {
	case "territory", "flag":
		if continent != "" {
			return atlas.ByContinent(continent), true
		}
		return atlas.Territories(), true
	case "capital":
		pool := atlas.WithCapitals()
		if continent != "" {
			var filtered []string
			for _, name := range atlas.ByContinent(continent) {
				if _, ok := atlas.Capital(name); ok {
					filtered = append(filtered, name)
				}
			}
			pool = filtered
		}
		return pool, true
	default:
		return nil, false
	}
}

// handleNewSession creates a new in-memory session backed by a fresh engine.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Mode == "" {
		req.Mode = "territory"
	}
	pool, ok := poolForMode(req.Mode, req.Continent)
	if !ok {
		http.Error(w, `{"error":"unknown_mode"}`, http.StatusBadRequest)
		return
	}
	if len(pool) == 0 {
		http.Error(w, `{"error":"empty_pool"}`, http.StatusBadRequest)
		return
	}
	rounds := req.Rounds
	if rounds <= 0 {
		rounds = 10
	}
	if rounds > len(pool) {
		rounds = len(pool)
	}

	eng := quiz.NewEngine(pool, rounds, quiz.WithDifficulty(quiz.Difficulty(req.Difficulty)))
	eng.StartNewGame()

	sess := &store.Session{
		ID:        genID(),
		Mode:      req.Mode,
		CreatedAt: time.Now().UTC(),
		Engine:    eng,
	}
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		sess.Owner = me.ID
		sess.Authed = true
	} else {
		sess.Owner = s.ensureAnonID(w, r)
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(s.sessionSnapshot(sess))
}

// guessReq is the payload for POST /session/{id}/guess.
type guessReq struct {
	Guess string `json:"guess"`
}

// answersTarget reports whether guess names the active target for the
// session's mode. Flag mode also accepts the two-letter flag code.
func answersTarget(mode, guess, target string) bool {
	guess = strings.TrimSpace(guess)
	switch mode {
	case "capital":
		capital, ok := atlas.Capital(target)
		return ok && strings.EqualFold(guess, capital)
	case "flag":
		if code, ok := atlas.FlagCode(target); ok && strings.EqualFold(guess, code) {
			return true
		}
		return strings.EqualFold(guess, target)
	default:
		return strings.EqualFold(guess, target)
	}
}

// handleGuess applies a guess to a session, persists the run when it ends,
// and returns the updated snapshot.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if !s.ownsSession(w, r, sess) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}

	st := sess.Engine.State()
	if st.Ended || st.ActiveTarget == quiz.NoTargetAvailable {
		s.persistIfEnded(r.Context(), sess)
		_ = json.NewEncoder(w).Encode(s.sessionSnapshot(sess))
		return
	}
	if answersTarget(sess.Mode, req.Guess, st.ActiveTarget) {
		sess.Engine.HandleCorrectGuess(st.ActiveTarget)
	} else {
		sess.Engine.HandleIncorrectGuess()
	}

	s.persistIfEnded(r.Context(), sess)
	_ = json.NewEncoder(w).Encode(s.sessionSnapshot(sess))
}

// handleSkip forfeits the current round.
func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if !s.ownsSession(w, r, sess) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	st := sess.Engine.State()
	if st.Ended || st.ActiveTarget == quiz.NoTargetAvailable {
		s.persistIfEnded(r.Context(), sess)
		_ = json.NewEncoder(w).Encode(s.sessionSnapshot(sess))
		return
	}
	skipped := sess.Engine.SkipEntity()
	s.persistIfEnded(r.Context(), sess)
	res := s.sessionSnapshot(sess)
	res.Skipped = skipped
	_ = json.NewEncoder(w).Encode(res)
}

// handleGetSession returns the current snapshot.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if !s.ownsSession(w, r, sess) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	// A countdown can end the session between requests; persist on observation.
	s.persistIfEnded(r.Context(), sess)
	_ = json.NewEncoder(w).Encode(s.sessionSnapshot(sess))
}

// ownsSession checks the request identity against the session owner.
func (s *Server) ownsSession(w http.ResponseWriter, r *http.Request, sess *store.Session) bool {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return sess.Owner == me.ID
	}
	return sess.Owner == s.ensureAnonID(w, r)
}

// persistIfEnded records the session's result once it has ended. Safe to call
// from any handler on every request; the session's record-once flag keeps a
// run from being written twice.
func (s *Server) persistIfEnded(ctx context.Context, sess *store.Session) {
	if sess.Engine.State().Ended {
		s.finishSession(ctx, sess)
	}
}

// finishSession records a completed run. User runs land in game_results;
// guest runs are keyed by the anonymous cookie so they can be claimed later.
// Daily sessions additionally feed the daily aggregate. At most one record is
// written per session.
func (s *Server) finishSession(ctx context.Context, sess *store.Session) {
	if !sess.MarkRecorded() {
		return
	}
	result := sess.Engine.Result()

	var userID, anonID any
	if sess.Authed {
		userID = sess.Owner
	} else {
		anonID = sess.Owner
	}

	_, err := s.db.Exec(`INSERT INTO game_results
	    (id, user_id, anonymous_id, mode, difficulty, score, raw_score, final_score,
	     time_seconds, total_rounds, correct_answers, created_at)
	    VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		genID(), userID, anonID, sess.Mode, string(sess.Engine.Difficulty()),
		result.Score, result.RawScorePercentage, result.FinalScore,
		result.TimeInSeconds, result.TotalRounds, result.CorrectAnswers,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		log.Warn().Err(err).Str("sessionId", sess.ID).Msg("insert game result")
	}

	if sess.Date != "" {
		s.recordDailySegment(ctx, sess, result)
	}
}

// ------------------------------- STATS -------------------------------------

// modeStats is one row of the per-mode aggregate.
type modeStats struct {
	Mode        string  `json:"mode"`
	GamesPlayed int     `json:"gamesPlayed"`
	BestScore   int     `json:"bestScore"`
	AvgScore    float64 `json:"avgScore"`
}

// handleMyStats aggregates finished runs per mode for the authenticated user.
func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	query, args, err := squirrel.
		Select("mode", "COUNT(1)", "MAX(score)", "AVG(score)").
		From("game_results").
		Where(squirrel.Eq{"user_id": me.ID}).
		GroupBy("mode").
		PlaceholderFormat(squirrel.Question).
		ToSql()
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	out := []modeStats{}
	for rows.Next() {
		var ms modeStats
		if err := rows.Scan(&ms.Mode, &ms.GamesPlayed, &ms.BestScore, &ms.AvgScore); err == nil {
			out = append(out, ms)
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":       me.ID,
		"username": me.Username,
		"modes":    out,
	})
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt returns the integer value of k or def if unset/invalid.
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// newDailyEngine builds an engine over a daily round's fixed pool, seeded so
// every player sees the same target order.
func newDailyEngine(rd challenge.Round, seed int64, difficulty quiz.Difficulty) *quiz.Engine {
	return quiz.NewEngine(rd.Entities, rd.Count,
		quiz.WithDifficulty(difficulty),
		quiz.WithSource(rng.NewLCG(seed)))
}
