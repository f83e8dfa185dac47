package security

import (
	"context"
	"fmt"
	"strings"

	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/store"
)

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "banword-add",
			Description: "Add a word to the banned word list",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "word", Description: "Word or phrase to ban", Type: platform.OptionString, Required: true},
				{Name: "action", Description: "What to do when matched", Type: platform.OptionString,
					Choices: []string{"timeout", "delete", "warn"}},
			},
			Handler: c.handleAddWord,
		},
		{
			Name:        "banword-remove",
			Description: "Remove a word from the banned word list",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "word", Description: "Word to remove", Type: platform.OptionString, Required: true},
			},
			Handler: c.handleRemoveWord,
		},
		{
			Name:        "banword-list",
			Description: "Show the banned word list",
			AdminOnly:   true,
			Handler:     c.handleListWords,
		},
		{
			Name:        "security-toggle",
			Description: "Enable or disable the word filter",
			AdminOnly:   true,
			Options: []platform.CommandOption{
				{Name: "enabled", Description: "New state", Type: platform.OptionBoolean, Required: true},
			},
			Handler: c.handleToggle,
		},
	}
}

func (c *Cog) handleAddWord(ctx context.Context, ic *platform.Interaction) {
	word := strings.TrimSpace(ic.String("word", ""))
	if word == "" {
		ic.Respond("Word must not be empty.", true)
		return
	}
	action := WordAction(ic.String("action", string(ActionDelete)))
	if !ValidWordAction(action) {
		ic.Respond("Unknown action.", true)
		return
	}

	dup := false
	err := store.Update(c.store, ic.GuildID, Feature, NewSettings, func(s *Settings) error {
		for _, w := range s.Words {
			if strings.EqualFold(w.Word, word) {
				dup = true
				return nil
			}
		}
		s.Words = append(s.Words, Word{Word: word, Action: action})
		return nil
	})
	if err != nil {
		ic.Respond("Something went wrong saving the word list.", true)
		return
	}
	if dup {
		ic.Respond(fmt.Sprintf("%q is already on the list.", word), true)
		return
	}
	ic.Respond(fmt.Sprintf("Added %q to the banned word list (%s).", word, action), true)
}

func (c *Cog) handleRemoveWord(ctx context.Context, ic *platform.Interaction) {
	word := strings.TrimSpace(ic.String("word", ""))
	removed := false
	err := store.Update(c.store, ic.GuildID, Feature, NewSettings, func(s *Settings) error {
		for i, w := range s.Words {
			if strings.EqualFold(w.Word, word) {
				s.Words = append(s.Words[:i], s.Words[i+1:]...)
				removed = true
				return nil
			}
		}
		return nil
	})
	if err != nil || !removed {
		ic.Respond(fmt.Sprintf("%q is not on the list.", word), true)
		return
	}
	ic.Respond(fmt.Sprintf("Removed %q from the banned word list.", word), true)
}

func (c *Cog) handleListWords(ctx context.Context, ic *platform.Interaction) {
	var s Settings
	if err := c.store.Get(ic.GuildID, Feature, &s); err != nil || len(s.Words) == 0 {
		ic.Respond("The banned word list is empty.", true)
		return
	}

	var b strings.Builder
	state := "enabled"
	if !s.Enabled {
		state = "disabled"
	}
	fmt.Fprintf(&b, "Word filter is **%s**. %d word(s):\n", state, len(s.Words))
	for _, w := range s.Words {
		fmt.Fprintf(&b, "- `%s` → %s\n", w.Word, w.Action)
	}
	ic.Respond(b.String(), true)
}

func (c *Cog) handleToggle(ctx context.Context, ic *platform.Interaction) {
	enabled := ic.Bool("enabled", true)
	err := store.Update(c.store, ic.GuildID, Feature, NewSettings, func(s *Settings) error {
		s.Enabled = enabled
		return nil
	})
	if err != nil {
		ic.Respond("Something went wrong.", true)
		return
	}
	if enabled {
		ic.Respond("Word filter enabled.", true)
	} else {
		ic.Respond("Word filter disabled.", true)
	}
}
