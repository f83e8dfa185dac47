package rules

import (
	"regexp"
	"strings"
)

// Message is the engine's read-only view of an incoming chat message.
type Message struct {
	ChannelID   string
	AuthorRoles []string
	Content     string
}

// MatchResult identifies the first rule that matched a message. The Rule
// pointer aliases the document's slice so the caller can update telemetry
// after a successful dispatch.
type MatchResult struct {
	Rule  *Rule
	Index int
}

// Evaluate walks the document's rules in stored order and returns the
// first match, or nil. It is synchronous and side-effect-free: counters
// are the caller's business, and nothing here ever panics on bad rule
// data; a malformed regex or unknown match type simply never matches.
func Evaluate(doc *Document, msg Message) *MatchResult {
	if doc == nil || !doc.Enabled {
		return nil
	}
	for i := range doc.Rules {
		r := &doc.Rules[i]
		if !r.Enabled {
			continue
		}
		if len(r.ChannelIDs) > 0 && !containsString(r.ChannelIDs, msg.ChannelID) {
			continue
		}
		if len(r.RoleIDs) > 0 && !intersects(r.RoleIDs, msg.AuthorRoles) {
			continue
		}
		if matchTrigger(r, msg.Content) {
			return &MatchResult{Rule: r, Index: i}
		}
	}
	return nil
}

// matchTrigger applies the rule's match type to the content. Regex rules
// get a case-insensitivity flag rather than lower-casing, so metacharacters
// survive intact; a pattern that fails to compile never matches.
func matchTrigger(r *Rule, content string) bool {
	if r.MatchType == MatchRegex {
		pattern := r.Trigger
		if !r.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(content)
	}

	trigger := r.Trigger
	if !r.CaseSensitive {
		trigger = strings.ToLower(trigger)
		content = strings.ToLower(content)
	}

	switch r.MatchType {
	case MatchExact:
		return content == trigger
	case MatchContains:
		return strings.Contains(content, trigger)
	case MatchStartsWith:
		return strings.HasPrefix(content, trigger)
	case MatchEndsWith:
		return strings.HasSuffix(content, trigger)
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
