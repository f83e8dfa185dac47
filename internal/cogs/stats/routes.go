package stats

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/guildkeeper/guildkeeper/internal/statsdb"
)

// RegisterRoutes mounts the statistics endpoint.
func RegisterRoutes(r chi.Router, db *statsdb.DB) {
	r.Get("/api/stats/{guildID}", summaryHandler(db))
}

// timeNow is swapped out in tests.
var timeNow = time.Now

func summaryHandler(db *statsdb.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			http.Error(w, "statistics unavailable", http.StatusServiceUnavailable)
			return
		}
		guildID := chi.URLParam(r, "guildID")
		days := 7
		if d := r.URL.Query().Get("days"); d == "30" {
			days = 30
		}
		since := statsdb.Day(timeNow().AddDate(0, 0, -days))
		s, err := db.GuildSummary(r.Context(), guildID, since, 10)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if s.TopUsers == nil {
			s.TopUsers = []statsdb.UserCount{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s)
	}
}
