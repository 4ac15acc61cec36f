package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/yanun0323/logs"

	"botmarket/bots"
	"botmarket/engine"
	"botmarket/match"
)

const (
	defaultListenAddr   = ":3000"
	defaultSentimentURL = "http://127.0.0.1:9933"
)

type server struct {
	match      *match.Match
	hub        *summaryHub
	upgrader   websocket.Upgrader
	corsOrigin string
}

func main() {
	_ = godotenv.Load()

	listenAddr := getEnv("LISTEN_ADDR", defaultListenAddr)
	corsOrigin := getEnv("CORS_ORIGIN", "*")
	sentimentURL := getEnv("SENTIMENT_URL", defaultSentimentURL)

	cfg := match.Config{
		TickInterval:   time.Duration(parseIntEnv("TICK_MS", 1500)) * time.Millisecond,
		AnnounceWindow: int(parseIntEnv("ANN_WINDOW", 30)),
		Engine: engine.Config{
			K:          parseFloatEnv("ENGINE_K", 0.25),
			L:          parseFloatEnv("ENGINE_L", 2000),
			Lambda:     parseFloatEnv("ENGINE_LAMBDA", 0.03),
			SigmaNoise: parseFloatEnv("ENGINE_SIGMA_NOISE", 0.004),
			FeeTrade:   parseFloatEnv("ENGINE_FEE_TRADE", 0.02),
			PriceFloor: parseFloatEnv("ENGINE_PRICE_FLOOR", 0.01),
		},
		InitialPrice:    parseFloatEnv("INITIAL_PRICE", 100),
		StartingCapital: parseFloatEnv("STARTING_CAPITAL", 10),
		LeaderboardSize: int(parseIntEnv("LEADERBOARD_N", 10)),
		DefaultBots:     match.DefaultSeeds(sentimentURL),
	}

	// the default roster is seeded but the clock stays stopped until
	// /match/resume, mirroring the control surface contract
	m := match.NewMatch(cfg)
	srv := newServer(m, corsOrigin)

	logs.Infof("listening on %s", listenAddr)
	if err := http.ListenAndServe(listenAddr, srv.routes()); err != nil {
		logs.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}

func newServer(m *match.Match, corsOrigin string) *server {
	s := &server{
		match:      m,
		hub:        newSummaryHub(),
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		corsOrigin: corsOrigin,
	}
	go s.consumeSummaries()
	return s
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/match/agents", s.withCORS(http.HandlerFunc(s.handleAgents)))
	mux.Handle("/match/snapshot", s.withCORS(http.HandlerFunc(s.handleSnapshot)))
	mux.Handle("/match/leaderboard", s.withCORS(http.HandlerFunc(s.handleLeaderboard)))
	mux.Handle("/match/strategies", s.withCORS(http.HandlerFunc(s.handleStrategies)))
	mux.Handle("/match/pause", s.withCORS(s.control(s.match.Pause)))
	mux.Handle("/match/resume", s.withCORS(s.control(s.match.Start)))
	mux.Handle("/match/reset", s.withCORS(s.control(s.match.Reset)))
	mux.Handle("/match/cartel/start", s.withCORS(http.HandlerFunc(s.handleCartelStart)))
	mux.Handle("/match/cartel/stop", s.withCORS(s.control(s.match.StopCartel)))
	mux.Handle("/ws", s.withCORS(http.HandlerFunc(s.handleStream)))
	return mux
}

func (s *server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// control wraps the bare start/pause/reset/stop-cartel operations.
func (s *server) control(op func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		op()
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
}

func (s *server) handleAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var seed match.BotSeed
	if err := json.NewDecoder(r.Body).Decode(&seed); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if seed.BotID == "" {
		writeError(w, http.StatusBadRequest, errors.New("botId is required"))
		return
	}

	if err := s.match.AddAgent(seed); err != nil {
		if errors.Is(err, match.ErrDuplicateAgent) {
			writeJSON(w, http.StatusConflict, map[string]any{"ok": false, "error": "DUPLICATE_ID"})
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.match.Snapshot())
}

func (s *server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, s.match.Leaderboard(n))
}

func (s *server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, bots.Presets())
}

type cartelStartRequest struct {
	LeaderID      string `json:"leaderId"`
	NFollowers    *int   `json:"nFollowers"`
	DurationTicks *int   `json:"durationTicks"`
}

func (s *server) handleCartelStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req cartelStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	followers := 3
	if req.NFollowers != nil {
		followers = *req.NFollowers
	}
	duration := 20
	if req.DurationTicks != nil {
		duration = *req.DurationTicks
	}

	cartel, err := s.match.StartCartel(req.LeaderID, followers, duration)
	if err != nil {
		if errors.Is(err, match.ErrLeaderNotFound) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "LEADER_NOT_FOUND"})
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"leaderId":  cartel.LeaderID,
		"followers": cartel.Followers,
		"untilTick": cartel.UntilTick,
	})
}

func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.hub.subscribe(32)
	defer s.hub.unsubscribe(sub)

	for summary := range sub.ch {
		if err := conn.WriteJSON(summary); err != nil {
			return
		}
	}
}

func (s *server) consumeSummaries() {
	for summary := range s.match.Summaries() {
		s.hub.broadcast(summary)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logs.Warnf("invalid %s value %s: %v, falling back to %d", key, value, err, defaultValue)
		return defaultValue
	}
	return parsed
}

func parseFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logs.Warnf("invalid %s value %s: %v, falling back to %g", key, value, err, defaultValue)
		return defaultValue
	}
	return parsed
}
