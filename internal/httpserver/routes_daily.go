// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - GET  /daily             → today's challenge composition (cached)
//   - POST /daily/new         → start (or reuse) a session for one daily round
//   - GET  /daily/leaderboard → top results for today (or a given date)
//
// A daily run is three seeded sessions, one per round type. Segment results
// accumulate in memory; when all three have finished, the combined result is
// persisted. Each user can post one result per day (enforced by DB).
// Target order within each session is deterministic per date, so every player
// faces the same sequence.

package httpserver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mapquiz/go-server/internal/challenge"
	"github.com/mapquiz/go-server/internal/leaderboard"
	"github.com/mapquiz/go-server/internal/quiz"
	"github.com/mapquiz/go-server/internal/store"
)

// dailyRun holds transient in-memory state for an in-progress daily run.
type dailyRun struct {
	SessionIDs map[string]string      // round type → session ID
	Segments   map[string]quiz.Result // round type → finished segment result
	Recorded   bool
}

// dailyRuns tracks active runs keyed by ownerID|date.
type dailyRuns struct {
	mu   sync.Mutex
	runs map[string]*dailyRun
}

func newDailyRuns() *dailyRuns {
	return &dailyRuns{runs: make(map[string]*dailyRun)}
}

func (d *dailyRuns) get(owner, date string) *dailyRun {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := owner + "|" + date
	run, ok := d.runs[key]
	if !ok {
		// Runs from previous dates can never complete; drop them so the map
		// does not grow day over day.
		for k := range d.runs {
			if !strings.HasSuffix(k, "|"+date) {
				delete(d.runs, k)
			}
		}
		run = &dailyRun{
			SessionIDs: make(map[string]string),
			Segments:   make(map[string]quiz.Result),
		}
		d.runs[key] = run
	}
	return run
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDailyToday)
		r.Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleDailyLeaderboard)
	})
}

// ownerID returns the authenticated user ID if logged in, otherwise ensures
// an anonymous ID via ensureAnonID. The second return reports which it was.
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID, true
	}
	return s.ensureAnonID(w, r), false
}

// -----------------------------------------------------------------------------
// GET /daily

// dailyRes is returned by GET /daily.
type dailyRes struct {
	Challenge challenge.Challenge `json:"challenge"`
	Played    bool                `json:"played"`
}

// handleDailyToday returns today's challenge composition and whether the
// caller has already recorded a result.
func (s *Server) handleDailyToday(w http.ResponseWriter, r *http.Request) {
	ch, err := s.challenges.Today(time.Now())
	if err != nil {
		http.Error(w, `{"error":"challenge_unavailable"}`, http.StatusInternalServerError)
		return
	}
	uid, _ := s.ownerID(w, r)
	played, _ := s.lb.AlreadyPlayed(r.Context(), uid, ch.Date)
	_ = json.NewEncoder(w).Encode(dailyRes{Challenge: ch, Played: played})
}

// -----------------------------------------------------------------------------
// POST /daily/new

// dailyNewReq selects which of the three daily rounds to start.
type dailyNewReq struct {
	Round      string `json:"round"`      // "territory" | "flag" | "capital"
	Difficulty string `json:"difficulty"` // optional; default "medium"
}

// handleDailyNew starts a session for one round of today's challenge.
// - If the user already has a DB row for today → Played=true, no session.
// - An unfinished session for the same round is reused.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	var req dailyNewReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Difficulty == "" {
		req.Difficulty = string(quiz.DifficultyMedium)
	}

	ch, err := s.challenges.Today(time.Now())
	if err != nil {
		http.Error(w, `{"error":"challenge_unavailable"}`, http.StatusInternalServerError)
		return
	}
	var round *challenge.Round
	for i := range ch.Rounds {
		if ch.Rounds[i].Type == challenge.RoundType(req.Round) {
			round = &ch.Rounds[i]
			break
		}
	}
	if round == nil {
		http.Error(w, `{"error":"unknown_round"}`, http.StatusBadRequest)
		return
	}

	uid, authed := s.ownerID(w, r)
	if played, err := s.lb.AlreadyPlayed(r.Context(), uid, ch.Date); err == nil && played {
		_ = json.NewEncoder(w).Encode(map[string]any{"date": ch.Date, "played": true})
		return
	}

	run := s.daily.get(uid, ch.Date)

	// Reuse an open session for this round; an ended one first records its
	// segment so the finished-segment check below sees it.
	s.daily.mu.Lock()
	id, started := run.SessionIDs[string(round.Type)]
	s.daily.mu.Unlock()
	if started {
		if sess, err := s.store.Get(r.Context(), id); err == nil {
			s.persistIfEnded(r.Context(), sess)
			if !sess.Engine.State().Ended {
				_ = json.NewEncoder(w).Encode(s.sessionSnapshot(sess))
				return
			}
		}
	}

	// A finished round is final: no replaying a badly-scored segment before
	// the full run records.
	s.daily.mu.Lock()
	_, done := run.Segments[string(round.Type)]
	s.daily.mu.Unlock()
	if done {
		_ = json.NewEncoder(w).Encode(map[string]any{"date": ch.Date, "played": true})
		return
	}

	eng := newDailyEngine(*round, ch.Seed, quiz.Difficulty(req.Difficulty))
	eng.StartNewGame()
	sess := &store.Session{
		ID:        genID(),
		Owner:     uid,
		Authed:    authed,
		Mode:      string(round.Type),
		Date:      ch.Date,
		CreatedAt: time.Now().UTC(),
		Engine:    eng,
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	s.daily.mu.Lock()
	run.SessionIDs[string(round.Type)] = sess.ID
	s.daily.mu.Unlock()

	_ = json.NewEncoder(w).Encode(s.sessionSnapshot(sess))
}

// recordDailySegment stores one finished segment and, once all three rounds
// are in, persists the combined run to the leaderboard table.
func (s *Server) recordDailySegment(ctx context.Context, sess *store.Session, result quiz.Result) {
	run := s.daily.get(sess.Owner, sess.Date)
	s.daily.mu.Lock()
	defer s.daily.mu.Unlock()

	run.Segments[sess.Mode] = result
	if run.Recorded || len(run.Segments) < len(challenge.RoundTypes) {
		return
	}

	// Combine: re-derive total weight from each segment's raw percentage so
	// the aggregate matches scoring over the union of all rounds.
	var weight float64
	var rounds, timeSec int
	for _, seg := range run.Segments {
		weight += seg.RawScorePercentage / 100 * float64(seg.TotalRounds) * 4
		rounds += seg.TotalRounds
		timeSec += seg.TimeInSeconds
	}
	raw := 100 * weight / (float64(rounds) * 4)
	combined := leaderboard.Result{
		UserID:             sess.Owner,
		Date:               sess.Date,
		Score:              int(math.Floor(raw)),
		RawScorePercentage: raw,
		TimeInSeconds:      timeSec,
	}
	if err := s.lb.InsertResult(ctx, combined); err == nil {
		run.Recorded = true
	}
}

// -----------------------------------------------------------------------------
// GET /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string            `json:"date"`
	Top  []leaderboard.Row `json:"top"`
}

// handleDailyLeaderboard returns the leaderboard for the given date (default
// today).
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = challenge.DateKey(time.Now())
	}
	limit := envInt("LEADERBOARD_LIMIT", 20)
	rows, err := s.lb.Top(r.Context(), date, limit)
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
