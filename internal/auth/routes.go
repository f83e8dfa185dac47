package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/guildkeeper/guildkeeper/internal/logging"
	"golang.org/x/oauth2"
)

// RegisterRoutes mounts the login flow. These endpoints are public; the
// API itself is gated by Sessions.RequireSession.
func RegisterRoutes(r chi.Router, conf *oauth2.Config, sessions *Sessions) {
	log := logging.GetLogger("auth")

	r.Get("/login", func(w http.ResponseWriter, req *http.Request) {
		state := uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     "gk_oauth_state",
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			MaxAge:   300,
		})
		http.Redirect(w, req, conf.AuthCodeURL(state), http.StatusFound)
	})

	r.Get("/callback", func(w http.ResponseWriter, req *http.Request) {
		stateCookie, err := req.Cookie("gk_oauth_state")
		if err != nil || req.URL.Query().Get("state") != stateCookie.Value {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := req.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "authorization denied", http.StatusBadRequest)
			return
		}

		token, err := conf.Exchange(req.Context(), code)
		if err != nil {
			log.Warn().Err(err).Msg("oauth code exchange failed")
			http.Error(w, "login failed", http.StatusBadGateway)
			return
		}
		identity, err := FetchIdentity(req.Context(), conf, token)
		if err != nil {
			log.Warn().Err(err).Msg("identity lookup failed")
			http.Error(w, "login failed", http.StatusBadGateway)
			return
		}

		id := sessions.Create(*identity)
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		log.Info().Str("user", identity.Username).Msg("dashboard login")
		http.Redirect(w, req, "/", http.StatusFound)
	})

	r.Get("/logout", func(w http.ResponseWriter, req *http.Request) {
		if cookie, err := req.Cookie(CookieName); err == nil {
			sessions.Delete(cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
		http.Redirect(w, req, "/", http.StatusFound)
	})
}
