// Package auth implements the dashboard's Discord OAuth2 login and the
// session registry gating the API.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Discord OAuth2 endpoints.
var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

const discordAPIBase = "https://discord.com/api/v10"

// Identity is the authenticated dashboard user.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// OAuthConfig builds the OAuth2 configuration for the dashboard login.
// The identify scope resolves the user; guilds lets the dashboard filter
// the server list to ones the user belongs to.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{"identify", "guilds"},
		Endpoint:     discordEndpoint,
		RedirectURL:  redirectURL,
	}
}

// FetchIdentity resolves the token holder's Discord identity.
func FetchIdentity(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*Identity, error) {
	client := conf.Client(ctx, token)
	resp, err := client.Get(discordAPIBase + "/users/@me")
	if err != nil {
		return nil, fmt.Errorf("fetching identity: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity request returned status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("decoding identity: %w", err)
	}
	return &id, nil
}
