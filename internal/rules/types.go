// Package rules implements the message-classification engine shared by the
// auto-reply and security cogs: an ordered list of configured trigger
// patterns evaluated against incoming messages, first match wins.
package rules

import "time"

// MatchType selects how a rule's trigger is compared to message content.
// An unrecognized value never matches, which effectively disables the rule.
type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchContains   MatchType = "contains"
	MatchStartsWith MatchType = "startsWith"
	MatchEndsWith   MatchType = "endsWith"
	MatchRegex      MatchType = "regex"
)

// ValidMatchType reports whether t is a recognized match type.
func ValidMatchType(t MatchType) bool {
	switch t {
	case MatchExact, MatchContains, MatchStartsWith, MatchEndsWith, MatchRegex:
		return true
	}
	return false
}

// ReplyType selects the side effect of an auto-reply rule as persisted.
type ReplyType string

const (
	ReplyReply   ReplyType = "reply"   // threaded reply to the triggering message
	ReplyMessage ReplyType = "message" // plain message to the same channel
	ReplyDM      ReplyType = "dm"      // direct message to the author
	ReplyReact   ReplyType = "react"   // emoji reaction on the triggering message
)

// ValidReplyType reports whether t is a recognized reply type.
func ValidReplyType(t ReplyType) bool {
	switch t {
	case ReplyReply, ReplyMessage, ReplyDM, ReplyReact:
		return true
	}
	return false
}

// Rule is one configured trigger→action mapping. The JSON field names are
// the persisted document format consumed by the dashboard.
type Rule struct {
	ID             int        `json:"id"`
	Trigger        string     `json:"trigger"`
	Reply          string     `json:"reply"`
	MatchType      MatchType  `json:"matchType"`
	ReplyType      ReplyType  `json:"replyType"`
	Enabled        bool       `json:"enabled"`
	CaseSensitive  bool       `json:"caseSensitive"`
	MentionUser    bool       `json:"mentionUser"`
	TriggerOnce    bool       `json:"triggerOnce"`
	ChannelIDs     []string   `json:"channelIds"`
	RoleIDs        []string   `json:"roleIds"`
	Reaction       string     `json:"reaction"`
	TriggeredCount int        `json:"triggeredCount"`
	LastTriggered  *time.Time `json:"lastTriggered"`
	CreatedAt      time.Time  `json:"createdAt"`
	CreatedBy      string     `json:"createdBy"`
}

// Document is the persisted per-guild rule set. Rule order is insertion
// order and is significant: evaluation walks it front to back.
type Document struct {
	Enabled bool   `json:"enabled"`
	Rules   []Rule `json:"rules"`
}

// NewDocument returns an empty, enabled document.
func NewDocument() *Document {
	return &Document{Enabled: true, Rules: []Rule{}}
}

// NextID returns the next free rule ID within the document.
func (d *Document) NextID() int {
	max := 0
	for _, r := range d.Rules {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

// Find returns a pointer to the rule with the given ID, or nil.
func (d *Document) Find(id int) *Rule {
	for i := range d.Rules {
		if d.Rules[i].ID == id {
			return &d.Rules[i]
		}
	}
	return nil
}

// Remove deletes the rule with the given ID, preserving the order of the
// remaining rules. Reports whether a rule was removed.
func (d *Document) Remove(id int) bool {
	for i := range d.Rules {
		if d.Rules[i].ID == id {
			d.Rules = append(d.Rules[:i], d.Rules[i+1:]...)
			return true
		}
	}
	return false
}
