package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"plstream-engine/internal/engine"
	"plstream-engine/internal/index"
)

// Server exposes the streaming classifier over HTTP. The engine itself is
// single-threaded, so every handler that touches it serializes on mu.
type Server struct {
	stream *engine.PLStream
	mu     sync.Mutex
}

func NewServer(stream *engine.PLStream) *Server {
	return &Server{stream: stream}
}

type IngestRequest struct {
	Label int    `json:"label"`
	Text  string `json:"text"`
}

type ClassifyRequest struct {
	Text string `json:"text"`
}

type NeighborsRequest struct {
	Word string `json:"word"`
	K    int    `json:"k"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":    "plstream-engine",
		"ok":         true,
		"time_utc":   time.Now().UTC().Format(time.RFC3339),
		"endpoints":  []string{"/health", "/stats", "/ingest", "/classify", "/neighbors", "/history"},
		"api_schema": 1,
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	vocab := s.stream.Model().VocabSize()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"time_utc":   time.Now().UTC().Format(time.RFC3339),
		"vocab_size": vocab,
	})
}

func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	m := s.stream.Model()
	trend := s.stream.Trend()
	stats := map[string]any{
		"vocab_size":     m.VocabSize(),
		"vector_size":    m.Dim(),
		"total_examples": m.TotalExamples(),
		"total_words":    m.TotalWords(),
		"buffered":       s.stream.Buffered(),
		"batches_done":   s.stream.BatchesDone(),
		"update_mode":    s.stream.UpdateMode(),
		"trend_positive": trend.PosCount,
		"trend_negative": trend.NegCount,
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.Label != 0 && req.Label != 1 {
		http.Error(w, "label must be 0 or 1", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	res, err := s.stream.Ingest(req.Label, req.Text)
	buffered := s.stream.Buffered()
	s.mu.Unlock()
	if err != nil {
		log.Printf("[ingest] batch failed: %v", err)
		http.Error(w, "batch processing failed", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"state":    res.State.String(),
		"buffered": buffered,
	}
	if res.State == engine.Processed {
		resp["report"] = res.Report
		resp["records"] = res.Records
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) HandleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	confidence, label := s.stream.Classify(req.Text)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"label":      label,
		"confidence": confidence,
	})
}

func (s *Server) HandleNeighbors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req NeighborsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Word == "" {
		http.Error(w, "word is required", http.StatusBadRequest)
		return
	}
	if req.K <= 0 {
		req.K = 10
	}

	s.mu.Lock()
	hits, err := index.Nearest(s.stream.Model(), req.Word, req.K)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"word":      req.Word,
		"neighbors": hits,
	})
}

func (s *Server) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	history := s.stream.AccuracyHistory()
	batches := s.stream.BatchesDone()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"batches_done": batches,
		"accuracy":     history,
	})
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HandleRoot)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/stats", s.HandleStats)
	mux.HandleFunc("/ingest", s.HandleIngest)
	mux.HandleFunc("/classify", s.HandleClassify)
	mux.HandleFunc("/neighbors", s.HandleNeighbors)
	mux.HandleFunc("/history", s.HandleHistory)
	return mux
}

func (s *Server) Start(addr string) error {
	log.Printf("API server listening on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}
