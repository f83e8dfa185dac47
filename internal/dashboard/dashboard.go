// Package dashboard exposes the bot's guild directory and live event
// feed to the web UI.
package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/guildkeeper/guildkeeper/internal/auth"
	"github.com/guildkeeper/guildkeeper/internal/bot"
	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/rs/zerolog"
)

// Dashboard serves bot and guild metadata for logged-in users.
type Dashboard struct {
	directory platform.Directory
	hub       *bot.Hub
	log       zerolog.Logger
}

// New creates a dashboard over the given directory and event hub.
func New(directory platform.Directory, hub *bot.Hub) *Dashboard {
	return &Dashboard{
		directory: directory,
		hub:       hub,
		log:       logging.GetLogger("dashboard"),
	}
}

// RegisterRoutes mounts the dashboard endpoints. The router is expected
// to already carry session authentication.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/api/bot-info", d.handleBotInfo)
	r.Get("/api/servers", d.handleServers)
	r.Get("/ws/events", d.handleEvents)
}

func (d *Dashboard) handleBotInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.directory.Bot())
}

// handleServers lists the guilds the bot shares with the logged-in user.
// Guilds where the user holds the Administrator permission are flagged;
// the UI only offers editing for those.
func (d *Dashboard) handleServers(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized"}`))
		return
	}

	type serverEntry struct {
		platform.GuildInfo
		Admin bool `json:"admin"`
	}
	out := []serverEntry{}
	for _, g := range d.directory.Guilds() {
		member, admin := d.directory.Membership(g.ID, sess.User.ID)
		if !member {
			continue
		}
		out = append(out, serverEntry{GuildInfo: g, Admin: admin})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
