package autoreply

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/guildkeeper/guildkeeper/internal/rules"
	"github.com/guildkeeper/guildkeeper/internal/store"
)

// RegisterRoutes mounts the auto-reply rule CRUD endpoints on the given
// router. The router is expected to already carry session authentication.
func RegisterRoutes(r chi.Router, st *store.Store) {
	r.Get("/api/auto-reply/{guildID}", getDocumentHandler(st))
	r.Post("/api/auto-reply/{guildID}", createRuleHandler(st))
	r.Put("/api/auto-reply/{guildID}/{ruleID}", updateRuleHandler(st))
	r.Delete("/api/auto-reply/{guildID}/{ruleID}", deleteRuleHandler(st))
	r.Post("/api/auto-reply/{guildID}/toggle", toggleFeatureHandler(st))
	r.Post("/api/auto-reply/{guildID}/{ruleID}/toggle", toggleRuleHandler(st))
}

func getDocumentHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		var doc rules.Document
		if err := st.Get(guildID, Feature, &doc); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusOK, rules.NewDocument())
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// ruleInput is the mutable subset of rule fields accepted from the
// dashboard. IDs and telemetry counters are managed server-side.
type ruleInput struct {
	Trigger       string          `json:"trigger"`
	Reply         string          `json:"reply"`
	MatchType     rules.MatchType `json:"matchType"`
	ReplyType     rules.ReplyType `json:"replyType"`
	Enabled       *bool           `json:"enabled"`
	CaseSensitive bool            `json:"caseSensitive"`
	MentionUser   bool            `json:"mentionUser"`
	TriggerOnce   bool            `json:"triggerOnce"`
	ChannelIDs    []string        `json:"channelIds"`
	RoleIDs       []string        `json:"roleIds"`
	Reaction      string          `json:"reaction"`
}

func (in *ruleInput) validate() string {
	if in.Trigger == "" {
		return "trigger is required"
	}
	if in.MatchType == "" {
		in.MatchType = rules.MatchContains
	}
	if !rules.ValidMatchType(in.MatchType) {
		return "unknown matchType"
	}
	if in.ReplyType == "" {
		in.ReplyType = rules.ReplyReply
	}
	if !rules.ValidReplyType(in.ReplyType) {
		return "unknown replyType"
	}
	return ""
}

func (in *ruleInput) apply(r *rules.Rule) {
	r.Trigger = in.Trigger
	r.Reply = in.Reply
	r.MatchType = in.MatchType
	r.ReplyType = in.ReplyType
	if in.Enabled != nil {
		r.Enabled = *in.Enabled
	}
	r.CaseSensitive = in.CaseSensitive
	r.MentionUser = in.MentionUser
	r.TriggerOnce = in.TriggerOnce
	r.ChannelIDs = in.ChannelIDs
	r.RoleIDs = in.RoleIDs
	r.Reaction = in.Reaction
}

func createRuleHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		var in ruleInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if msg := in.validate(); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		var id int
		err := store.Update(st, guildID, Feature, rules.NewDocument, func(d *rules.Document) error {
			rule := rules.Rule{
				ID:        d.NextID(),
				Enabled:   true,
				CreatedAt: time.Now().UTC(),
			}
			in.apply(&rule)
			id = rule.ID
			d.Rules = append(d.Rules, rule)
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int{"id": id})
	}
}

func updateRuleHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		ruleID, err := strconv.Atoi(chi.URLParam(r, "ruleID"))
		if err != nil {
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		var in ruleInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if msg := in.validate(); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		found := false
		err = store.Update(st, guildID, Feature, rules.NewDocument, func(d *rules.Document) error {
			if rule := d.Find(ruleID); rule != nil {
				in.apply(rule)
				found = true
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, "rule not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func deleteRuleHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		ruleID, err := strconv.Atoi(chi.URLParam(r, "ruleID"))
		if err != nil {
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}

		removed := false
		err = store.Update(st, guildID, Feature, rules.NewDocument, func(d *rules.Document) error {
			removed = d.Remove(ruleID)
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !removed {
			http.Error(w, "rule not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func toggleFeatureHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		err := store.Update(st, guildID, Feature, rules.NewDocument, func(d *rules.Document) error {
			d.Enabled = body.Enabled
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": body.Enabled})
	}
}

func toggleRuleHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		ruleID, err := strconv.Atoi(chi.URLParam(r, "ruleID"))
		if err != nil {
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		found := false
		err = store.Update(st, guildID, Feature, rules.NewDocument, func(d *rules.Document) error {
			if rule := d.Find(ruleID); rule != nil {
				rule.Enabled = body.Enabled
				found = true
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, "rule not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": body.Enabled})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
