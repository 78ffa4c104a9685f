package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleClassifierStats(w http.ResponseWriter, r *http.Request) {
	if s.remote == nil || s.remote.Stats == nil {
		jsonError(w, "classifier stats unavailable (rule-based classifier in use)", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model": s.remote.Model(),
		"stats": s.remote.Stats.Snapshot(),
	})
}
