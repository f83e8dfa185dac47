package customcmd

import (
	"context"
	"testing"
	"time"

	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/store"
)

type fakeClient struct {
	messages []string
}

func (f *fakeClient) Reply(ctx context.Context, msg platform.Message, text string, mention bool) error {
	return nil
}

func (f *fakeClient) SendMessage(ctx context.Context, channelID, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeClient) SendTransient(ctx context.Context, channelID, text string, after time.Duration) error {
	return nil
}

func (f *fakeClient) SendDM(ctx context.Context, userID, text string) error { return nil }

func (f *fakeClient) React(ctx context.Context, channelID, messageID, emoji string) error {
	return nil
}

func (f *fakeClient) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return nil
}

func (f *fakeClient) TimeoutMember(ctx context.Context, guildID, userID string, d time.Duration, reason string) error {
	return nil
}

func newTestCog(t *testing.T) (*Cog, *store.Store, *fakeClient) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	client := &fakeClient{}
	return New(st, client, "!"), st, client
}

func seed(t *testing.T, st *store.Store, guildID string, commands map[string]string) {
	t.Helper()
	d := NewData()
	for name, response := range commands {
		d.Commands[name] = &Entry{Response: response}
	}
	if err := st.Put(guildID, Feature, d); err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func TestKnownCommandResponds(t *testing.T) {
	cog, st, client := newTestCog(t)
	seed(t, st, "g1", map[string]string{"rules": "Be kind in {server}."})

	cog.OnMessage(context.Background(), platform.Message{
		GuildID: "g1", GuildName: "Go Gophers", ChannelID: "c1", AuthorID: "123",
		Content: "!rules",
	})

	if len(client.messages) != 1 || client.messages[0] != "Be kind in Go Gophers." {
		t.Errorf("messages = %v", client.messages)
	}

	var d Data
	if err := st.Get("g1", Feature, &d); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Commands["rules"].Uses != 1 {
		t.Errorf("uses = %d, want 1", d.Commands["rules"].Uses)
	}
}

func TestCommandNameIsCaseInsensitiveAndIgnoresArgs(t *testing.T) {
	cog, st, client := newTestCog(t)
	seed(t, st, "g1", map[string]string{"rules": "Be kind."})

	cog.OnMessage(context.Background(), platform.Message{
		GuildID: "g1", ChannelID: "c1", Content: "!RULES please",
	})

	if len(client.messages) != 1 {
		t.Errorf("messages = %v, want one", client.messages)
	}
}

func TestNonCommandMessagesIgnored(t *testing.T) {
	cog, st, client := newTestCog(t)
	seed(t, st, "g1", map[string]string{"rules": "Be kind."})

	for _, content := range []string{"rules", "!unknown", "!", "hello !rules"} {
		cog.OnMessage(context.Background(), platform.Message{
			GuildID: "g1", ChannelID: "c1", Content: content,
		})
	}

	if len(client.messages) != 0 {
		t.Errorf("messages = %v, want none", client.messages)
	}
}

func TestAddAndRemoveViaSlashCommand(t *testing.T) {
	cog, st, _ := newTestCog(t)

	respond := func(string, bool) error { return nil }
	add := platform.NewInteraction("g1", "Go Gophers", "c1", "admin", "admin", true,
		map[string]any{"name": "Ping", "response": "pong"}, respond)
	cog.handleAdd(context.Background(), add)

	var d Data
	if err := st.Get("g1", Feature, &d); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Commands["ping"] == nil || d.Commands["ping"].Response != "pong" {
		t.Errorf("commands = %v, want lowercased ping", d.Commands)
	}

	rm := platform.NewInteraction("g1", "Go Gophers", "c1", "admin", "admin", true,
		map[string]any{"name": "ping"}, respond)
	cog.handleRemove(context.Background(), rm)

	// Decode into a fresh value; Unmarshal merges into a populated map.
	var after Data
	if err := st.Get("g1", Feature, &after); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(after.Commands) != 0 {
		t.Errorf("commands = %v, want empty", after.Commands)
	}
}
