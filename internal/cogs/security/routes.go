package security

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/guildkeeper/guildkeeper/internal/statsdb"
	"github.com/guildkeeper/guildkeeper/internal/store"
)

// RegisterRoutes mounts the security settings endpoints. audit may be nil
// if the statistics database is unavailable.
func RegisterRoutes(r chi.Router, st *store.Store, audit *statsdb.DB) {
	r.Get("/api/security/{guildID}", getSettingsHandler(st))
	r.Put("/api/security/{guildID}", putSettingsHandler(st))
	r.Post("/api/security/{guildID}/toggle", toggleHandler(st))
	r.Get("/api/security/{guildID}/audit", auditHandler(audit))
}

func getSettingsHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		var s Settings
		if err := st.Get(guildID, Feature, &s); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusOK, NewSettings())
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func putSettingsHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		var in Settings
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		for _, word := range in.Words {
			if word.Word == "" {
				http.Error(w, "word entries must not be empty", http.StatusBadRequest)
				return
			}
			if word.Action != "" && !ValidWordAction(word.Action) {
				http.Error(w, "unknown word action", http.StatusBadRequest)
				return
			}
		}
		if in.TimeoutSeconds < 0 {
			http.Error(w, "timeoutSeconds must not be negative", http.StatusBadRequest)
			return
		}

		if err := st.Put(guildID, Feature, &in); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, in)
	}
}

func toggleHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		err := store.Update(st, guildID, Feature, NewSettings, func(s *Settings) error {
			s.Enabled = body.Enabled
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": body.Enabled})
	}
}

func auditHandler(audit *statsdb.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if audit == nil {
			http.Error(w, "audit log unavailable", http.StatusServiceUnavailable)
			return
		}
		guildID := chi.URLParam(r, "guildID")
		actions, err := audit.RecentModActions(r.Context(), guildID, 50)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if actions == nil {
			actions = []statsdb.ModAction{}
		}
		writeJSON(w, http.StatusOK, actions)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
