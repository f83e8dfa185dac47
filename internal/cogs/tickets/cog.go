// Package tickets implements support tickets with an append-only
// transcript rendered to HTML when the ticket closes.
package tickets

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/store"
	"github.com/rs/zerolog"
)

// Feature is the store key for the per-guild ticket data.
const Feature = "tickets"

// Status values for a ticket lifecycle.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Entry is one transcript line.
type Entry struct {
	At         time.Time `json:"at"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
}

// Ticket is one support ticket, bound to the channel it was opened in.
// At most one ticket per channel may be open at a time.
type Ticket struct {
	ID         string     `json:"id"`
	ChannelID  string     `json:"channelId"`
	OpenerID   string     `json:"openerId"`
	OpenerName string     `json:"openerName"`
	Subject    string     `json:"subject"`
	Status     string     `json:"status"`
	OpenedAt   time.Time  `json:"openedAt"`
	ClosedAt   *time.Time `json:"closedAt"`
	Transcript []Entry    `json:"transcript"`
}

// Data is the persisted per-guild ticket list.
type Data struct {
	Tickets []Ticket `json:"tickets"`
}

// NewData returns an empty ticket list.
func NewData() *Data {
	return &Data{Tickets: []Ticket{}}
}

// openInChannel returns the open ticket bound to the channel, or nil.
func (d *Data) openInChannel(channelID string) *Ticket {
	for i := range d.Tickets {
		if d.Tickets[i].ChannelID == channelID && d.Tickets[i].Status == StatusOpen {
			return &d.Tickets[i]
		}
	}
	return nil
}

// Cog manages the ticket lifecycle and transcript capture.
type Cog struct {
	store    *store.Store
	client   platform.Client
	renderer *TranscriptRenderer
	now      func() time.Time
	log      zerolog.Logger
}

// New creates the tickets cog. transcriptDir is where closed ticket
// transcripts are written as HTML.
func New(st *store.Store, client platform.Client, transcriptDir string) *Cog {
	return &Cog{
		store:    st,
		client:   client,
		renderer: NewTranscriptRenderer(transcriptDir),
		now:      time.Now,
		log:      logging.GetLogger("tickets"),
	}
}

// Name implements bot.Cog.
func (c *Cog) Name() string { return "tickets" }

// OnMessage appends the message to the channel's open ticket transcript,
// if any. Best effort; a persistence failure drops the line.
func (c *Cog) OnMessage(ctx context.Context, msg platform.Message) {
	err := store.Update(c.store, msg.GuildID, Feature, NewData, func(d *Data) error {
		t := d.openInChannel(msg.ChannelID)
		if t == nil {
			return nil
		}
		t.Transcript = append(t.Transcript, Entry{
			At:         c.now().UTC(),
			AuthorID:   msg.AuthorID,
			AuthorName: msg.AuthorName,
			Content:    msg.Content,
		})
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("guild", msg.GuildID).Msg("failed to append transcript entry")
	}
}

// Commands implements bot.CommandProvider.
func (c *Cog) Commands() []platform.Command {
	return []platform.Command{
		{
			Name:        "ticket-open",
			Description: "Open a support ticket in this channel",
			Options: []platform.CommandOption{
				{Name: "subject", Description: "What the ticket is about", Type: platform.OptionString, Required: true},
			},
			Handler: c.handleOpen,
		},
		{
			Name:        "ticket-close",
			Description: "Close this channel's open ticket",
			AdminOnly:   true,
			Handler:     c.handleClose,
		},
	}
}

func (c *Cog) handleOpen(ctx context.Context, ic *platform.Interaction) {
	subject := ic.String("subject", "")
	if subject == "" {
		ic.Respond("A subject is required.", true)
		return
	}

	var id string
	conflict := false
	err := store.Update(c.store, ic.GuildID, Feature, NewData, func(d *Data) error {
		if d.openInChannel(ic.ChannelID) != nil {
			conflict = true
			return nil
		}
		t := Ticket{
			ID:         uuid.NewString(),
			ChannelID:  ic.ChannelID,
			OpenerID:   ic.UserID,
			OpenerName: ic.UserName,
			Subject:    subject,
			Status:     StatusOpen,
			OpenedAt:   c.now().UTC(),
			Transcript: []Entry{},
		}
		id = t.ID
		d.Tickets = append(d.Tickets, t)
		return nil
	})
	if err != nil {
		ic.Respond("Something went wrong opening the ticket.", true)
		return
	}
	if conflict {
		ic.Respond("This channel already has an open ticket.", true)
		return
	}
	ic.Respond(fmt.Sprintf("Ticket `%s` opened: %s", id, subject), false)
}

func (c *Cog) handleClose(ctx context.Context, ic *platform.Interaction) {
	var closed *Ticket
	err := store.Update(c.store, ic.GuildID, Feature, NewData, func(d *Data) error {
		t := d.openInChannel(ic.ChannelID)
		if t == nil {
			return nil
		}
		t.Status = StatusClosed
		now := c.now().UTC()
		t.ClosedAt = &now
		tc := *t
		closed = &tc
		return nil
	})
	if err != nil {
		ic.Respond("Something went wrong closing the ticket.", true)
		return
	}
	if closed == nil {
		ic.Respond("No open ticket in this channel.", true)
		return
	}

	path, err := c.renderer.Render(ic.GuildID, closed)
	if err != nil {
		c.log.Warn().Err(err).Str("ticket", closed.ID).Msg("failed to render transcript")
		ic.Respond(fmt.Sprintf("Ticket `%s` closed. Transcript rendering failed.", closed.ID), false)
		return
	}
	c.log.Info().Str("ticket", closed.ID).Str("transcript", path).Msg("ticket closed")
	ic.Respond(fmt.Sprintf("Ticket `%s` closed. Transcript saved.", closed.ID), false)
}
