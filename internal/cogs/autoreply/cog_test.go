package autoreply

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guildkeeper/guildkeeper/internal/dispatch"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/rules"
	"github.com/guildkeeper/guildkeeper/internal/store"
)

type fakeClient struct {
	replies []string
	dms     []string
	dmErr   error
}

func (f *fakeClient) Reply(ctx context.Context, msg platform.Message, text string, mention bool) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeClient) SendMessage(ctx context.Context, channelID, text string) error { return nil }

func (f *fakeClient) SendTransient(ctx context.Context, channelID, text string, after time.Duration) error {
	return nil
}

func (f *fakeClient) SendDM(ctx context.Context, userID, text string) error {
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms = append(f.dms, text)
	return nil
}

func (f *fakeClient) React(ctx context.Context, channelID, messageID, emoji string) error {
	return nil
}

func (f *fakeClient) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return nil
}

func (f *fakeClient) TimeoutMember(ctx context.Context, guildID, userID string, d time.Duration, reason string) error {
	return nil
}

func newTestCog(t *testing.T, client platform.Client) (*Cog, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return New(st, dispatch.New(client), nil), st
}

func seedRule(t *testing.T, st *store.Store, guildID string, r rules.Rule) {
	t.Helper()
	err := store.Update(st, guildID, Feature, rules.NewDocument, func(d *rules.Document) error {
		d.Rules = append(d.Rules, r)
		return nil
	})
	if err != nil {
		t.Fatalf("seeding rule: %v", err)
	}
}

func TestOnMessageDispatchesAndCounts(t *testing.T) {
	client := &fakeClient{}
	cog, st := newTestCog(t, client)
	seedRule(t, st, "g1", rules.Rule{
		ID: 1, Trigger: "hello", Reply: "Hi {user}!",
		MatchType: rules.MatchContains, ReplyType: rules.ReplyReply,
		Enabled: true, MentionUser: true,
	})

	cog.OnMessage(context.Background(), platform.Message{
		GuildID: "g1", ChannelID: "c1", AuthorID: "123", AuthorName: "alice",
		Content: "Hello there",
	})

	if len(client.replies) != 1 || client.replies[0] != "Hi <@123>!" {
		t.Fatalf("replies = %v, want [\"Hi <@123>!\"]", client.replies)
	}

	var doc rules.Document
	if err := st.Get("g1", Feature, &doc); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Rules[0].TriggeredCount != 1 {
		t.Errorf("TriggeredCount = %d, want 1", doc.Rules[0].TriggeredCount)
	}
	if doc.Rules[0].LastTriggered == nil {
		t.Error("expected LastTriggered to be set")
	}
}

func TestOnMessageFailedDeliveryDoesNotCount(t *testing.T) {
	client := &fakeClient{dmErr: errors.New("cannot send messages to this user")}
	cog, st := newTestCog(t, client)
	seedRule(t, st, "g1", rules.Rule{
		ID: 1, Trigger: "secret", Reply: "psst",
		MatchType: rules.MatchContains, ReplyType: rules.ReplyDM, Enabled: true,
	})

	cog.OnMessage(context.Background(), platform.Message{
		GuildID: "g1", ChannelID: "c1", AuthorID: "123", Content: "the secret word",
	})

	var doc rules.Document
	if err := st.Get("g1", Feature, &doc); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Rules[0].TriggeredCount != 0 {
		t.Errorf("TriggeredCount = %d, want 0 after failed delivery", doc.Rules[0].TriggeredCount)
	}
}

func TestOnMessageNoDocumentIsQuiet(t *testing.T) {
	client := &fakeClient{}
	cog, _ := newTestCog(t, client)

	cog.OnMessage(context.Background(), platform.Message{
		GuildID: "g1", ChannelID: "c1", Content: "hello",
	})

	if len(client.replies) != 0 {
		t.Errorf("expected no replies, got %v", client.replies)
	}
}
