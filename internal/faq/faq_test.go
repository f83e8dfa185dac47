package faq

import (
	"context"
	"testing"
	"time"

	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/store"
)

// fakeEmbedder maps known texts to fixed vectors so similarity is
// deterministic. Unknown texts get an orthogonal vector.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 1}
		}
	}
	return out, nil
}

type fakeClient struct {
	replies []string
}

func (f *fakeClient) Reply(ctx context.Context, msg platform.Message, text string, mention bool) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeClient) SendMessage(ctx context.Context, channelID, text string) error { return nil }

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

func newTestCog(t *testing.T) (*Cog, *fakeClient) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"How do I reset my password":     {1, 0, 0},
		"how can I reset the password?":  {0.95, 0.05, 0},
		"what's the weather like today?": {0, 1, 0},
	}}
	client := &fakeClient{}
	return New(st, client, NewIndex(embedder), 0.8), client
}

func TestAnswersSimilarQuestion(t *testing.T) {
	cog, client := newTestCog(t)
	ctx := context.Background()

	if err := cog.index.Add(ctx, "g1", "e1", "How do I reset my password", "Use /reset-password."); err != nil {
		t.Fatalf("Add: %v", err)
	}

	cog.OnMessage(ctx, platform.Message{
		GuildID: "g1", ChannelID: "c1", AuthorID: "123",
		Content: "how can I reset the password?",
	})

	if len(client.replies) != 1 || client.replies[0] != "Use /reset-password." {
		t.Errorf("replies = %v", client.replies)
	}
}

func TestBelowThresholdStaysQuiet(t *testing.T) {
	cog, client := newTestCog(t)
	ctx := context.Background()

	if err := cog.index.Add(ctx, "g1", "e1", "How do I reset my password", "Use /reset-password."); err != nil {
		t.Fatalf("Add: %v", err)
	}

	cog.OnMessage(ctx, platform.Message{
		GuildID: "g1", ChannelID: "c1", AuthorID: "123",
		Content: "what's the weather like today?",
	})

	if len(client.replies) != 0 {
		t.Errorf("replies = %v, want none for an unrelated question", client.replies)
	}
}

func TestNonQuestionsIgnored(t *testing.T) {
	cog, client := newTestCog(t)
	ctx := context.Background()

	if err := cog.index.Add(ctx, "g1", "e1", "How do I reset my password", "Use /reset-password."); err != nil {
		t.Fatalf("Add: %v", err)
	}

	cog.OnMessage(ctx, platform.Message{
		GuildID: "g1", ChannelID: "c1", AuthorID: "123",
		Content: "how can I reset the password",
	})

	if len(client.replies) != 0 {
		t.Errorf("replies = %v, want none without a question mark", client.replies)
	}
}

func TestEmptyKnowledgeBaseIsQuiet(t *testing.T) {
	cog, client := newTestCog(t)

	cog.OnMessage(context.Background(), platform.Message{
		GuildID: "g1", ChannelID: "c1", Content: "anyone there?",
	})

	if len(client.replies) != 0 {
		t.Errorf("replies = %v, want none", client.replies)
	}
}

func TestLoadGuildRebuildsIndex(t *testing.T) {
	cog, client := newTestCog(t)
	ctx := context.Background()

	err := store.Update(cog.store, "g1", Feature, NewData, func(d *Data) error {
		d.Entries = append(d.Entries, Entry{ID: "e1", Question: "How do I reset my password", Answer: "Use /reset-password."})
		return nil
	})
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}

	if err := cog.LoadGuild(ctx, "g1"); err != nil {
		t.Fatalf("LoadGuild: %v", err)
	}

	cog.OnMessage(ctx, platform.Message{
		GuildID: "g1", ChannelID: "c1", Content: "how can I reset the password?",
	})

	if len(client.replies) != 1 {
		t.Errorf("replies = %v, want one after rebuild", client.replies)
	}
}
