package rules

import "strings"

// TemplateContext carries the values substituted into reply text.
type TemplateContext struct {
	UserMention    string
	Username       string
	ServerName     string
	ChannelMention string
}

// Expand substitutes the {user}, {username}, {server} and {channel} tokens
// in s. Pure string templating; unknown tokens pass through untouched.
func Expand(s string, tc TemplateContext) string {
	return strings.NewReplacer(
		"{user}", tc.UserMention,
		"{username}", tc.Username,
		"{server}", tc.ServerName,
		"{channel}", tc.ChannelMention,
	).Replace(s)
}
