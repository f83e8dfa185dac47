package security

import (
	"context"
	"testing"
	"time"

	"github.com/guildkeeper/guildkeeper/internal/dispatch"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/statsdb"
	"github.com/guildkeeper/guildkeeper/internal/store"
)

type fakeClient struct {
	replies  []string
	deleted  []string
	timeouts []time.Duration
	notices  []string
}

func (f *fakeClient) Reply(ctx context.Context, msg platform.Message, text string, mention bool) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeClient) SendMessage(ctx context.Context, channelID, text string) error { return nil }

func (f *fakeClient) SendTransient(ctx context.Context, channelID, text string, after time.Duration) error {
	f.notices = append(f.notices, text)
	return nil
}

func (f *fakeClient) SendDM(ctx context.Context, userID, text string) error { return nil }

func (f *fakeClient) React(ctx context.Context, channelID, messageID, emoji string) error {
	return nil
}

func (f *fakeClient) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeClient) TimeoutMember(ctx context.Context, guildID, userID string, d time.Duration, reason string) error {
	f.timeouts = append(f.timeouts, d)
	return nil
}

func newTestCog(t *testing.T, client platform.Client) (*Cog, *store.Store, *statsdb.DB) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	db, err := statsdb.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(st, dispatch.New(client), db, nil), st, db
}

func seedSettings(t *testing.T, st *store.Store, guildID string, s Settings) {
	t.Helper()
	if err := st.Put(guildID, Feature, &s); err != nil {
		t.Fatalf("seeding settings: %v", err)
	}
}

func TestTimeoutActionMutesDeletesAndAudits(t *testing.T) {
	client := &fakeClient{}
	cog, st, db := newTestCog(t, client)
	seedSettings(t, st, "g1", Settings{
		Enabled:        true,
		Words:          []Word{{Word: "spam.example", Action: ActionTimeout}},
		TimeoutSeconds: 600,
	})

	cog.OnMessage(context.Background(), platform.Message{
		ID: "m1", GuildID: "g1", ChannelID: "c1", AuthorID: "123",
		Content: "visit SPAM.EXAMPLE now",
	})

	if len(client.timeouts) != 1 || client.timeouts[0] != 10*time.Minute {
		t.Errorf("timeouts = %v, want one of 10m", client.timeouts)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "m1" {
		t.Errorf("deleted = %v, want [m1]", client.deleted)
	}
	if len(client.notices) != 1 || client.notices[0] != "<@123> has been muted for using a banned word." {
		t.Errorf("notices = %v", client.notices)
	}

	actions, err := db.RecentModActions(context.Background(), "g1", 10)
	if err != nil {
		t.Fatalf("RecentModActions: %v", err)
	}
	if len(actions) != 1 || actions[0].Action != "timeout" || actions[0].Trigger != "spam.example" {
		t.Errorf("audit = %+v", actions)
	}
}

func TestWarnActionRepliesWithoutDeleting(t *testing.T) {
	client := &fakeClient{}
	cog, st, _ := newTestCog(t, client)
	seedSettings(t, st, "g1", Settings{
		Enabled: true,
		Words:   []Word{{Word: "heck", Action: ActionWarn}},
	})

	cog.OnMessage(context.Background(), platform.Message{
		ID: "m1", GuildID: "g1", ChannelID: "c1", AuthorID: "123", AuthorName: "alice",
		Content: "what the heck",
	})

	if len(client.replies) != 1 || client.replies[0] != "Please watch your language, alice." {
		t.Errorf("replies = %v", client.replies)
	}
	if len(client.deleted) != 0 {
		t.Errorf("deleted = %v, want none", client.deleted)
	}
}

func TestWhitelistedRoleAndChannelAreExempt(t *testing.T) {
	client := &fakeClient{}
	cog, st, _ := newTestCog(t, client)
	seedSettings(t, st, "g1", Settings{
		Enabled:           true,
		Words:             []Word{{Word: "heck", Action: ActionDelete}},
		WhitelistRoles:    []string{"mods"},
		WhitelistChannels: []string{"off-topic"},
	})

	cog.OnMessage(context.Background(), platform.Message{
		ID: "m1", GuildID: "g1", ChannelID: "c1", AuthorID: "123",
		AuthorRoles: []string{"mods"}, Content: "heck",
	})
	cog.OnMessage(context.Background(), platform.Message{
		ID: "m2", GuildID: "g1", ChannelID: "off-topic", AuthorID: "456",
		Content: "heck",
	})

	if len(client.deleted) != 0 {
		t.Errorf("deleted = %v, want none for exempt messages", client.deleted)
	}
}

func TestDisabledFilterIsQuiet(t *testing.T) {
	client := &fakeClient{}
	cog, st, _ := newTestCog(t, client)
	seedSettings(t, st, "g1", Settings{
		Enabled: false,
		Words:   []Word{{Word: "heck", Action: ActionDelete}},
	})

	cog.OnMessage(context.Background(), platform.Message{
		ID: "m1", GuildID: "g1", ChannelID: "c1", AuthorID: "123", Content: "heck",
	})

	if len(client.deleted) != 0 {
		t.Errorf("deleted = %v, want none when disabled", client.deleted)
	}
}

func TestFirstWordWins(t *testing.T) {
	client := &fakeClient{}
	cog, st, _ := newTestCog(t, client)
	seedSettings(t, st, "g1", Settings{
		Enabled: true,
		Words: []Word{
			{Word: "bad", Action: ActionWarn},
			{Word: "badger", Action: ActionTimeout},
		},
	})

	cog.OnMessage(context.Background(), platform.Message{
		ID: "m1", GuildID: "g1", ChannelID: "c1", AuthorID: "123", AuthorName: "alice",
		Content: "look, a badger",
	})

	if len(client.replies) != 1 {
		t.Errorf("replies = %v, want the earlier word's warn action", client.replies)
	}
	if len(client.timeouts) != 0 {
		t.Errorf("timeouts = %v, want none", client.timeouts)
	}
}
