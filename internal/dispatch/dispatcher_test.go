package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/rules"
)

// mockClient records calls and fakes failures per method.
type mockClient struct {
	replies    []string
	messages   []string
	dms        []string
	reactions  []string
	deleted    []string
	timeouts   []time.Duration
	transients []string

	replyErr   error
	dmErr      error
	timeoutErr error
	deleteErr  error
}

func (m *mockClient) Reply(_ context.Context, _ platform.Message, text string, _ bool) error {
	if m.replyErr != nil {
		return m.replyErr
	}
	m.replies = append(m.replies, text)
	return nil
}

func (m *mockClient) SendMessage(_ context.Context, _ string, text string) error {
	m.messages = append(m.messages, text)
	return nil
}

func (m *mockClient) SendTransient(_ context.Context, _ string, text string, _ time.Duration) error {
	m.transients = append(m.transients, text)
	return nil
}

func (m *mockClient) SendDM(_ context.Context, _ string, text string) error {
	if m.dmErr != nil {
		return m.dmErr
	}
	m.dms = append(m.dms, text)
	return nil
}

func (m *mockClient) React(_ context.Context, _, _, emoji string) error {
	m.reactions = append(m.reactions, emoji)
	return nil
}

func (m *mockClient) DeleteMessage(_ context.Context, _, messageID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockClient) TimeoutMember(_ context.Context, _, _ string, d time.Duration, _ string) error {
	if m.timeoutErr != nil {
		return m.timeoutErr
	}
	m.timeouts = append(m.timeouts, d)
	return nil
}

var testMsg = platform.Message{
	ID:         "m1",
	GuildID:    "g1",
	GuildName:  "Test Server",
	ChannelID:  "c1",
	AuthorID:   "123",
	AuthorName: "alice",
	Content:    "Hello there",
}

func TestDispatchReplySubstitutesTemplate(t *testing.T) {
	client := &mockClient{}
	d := New(client)

	out := d.Dispatch(context.Background(), rules.Action{
		Kind: rules.ActionReply,
		Text: "Hi {user}!",
	}, testMsg)

	if !out.Delivered {
		t.Fatalf("expected delivered, got %+v", out)
	}
	if len(client.replies) != 1 || client.replies[0] != "Hi <@123>!" {
		t.Errorf("unexpected reply: %v", client.replies)
	}
}

func TestDispatchReplyFailureSwallowed(t *testing.T) {
	client := &mockClient{replyErr: errors.New("missing permission")}
	d := New(client)

	out := d.Dispatch(context.Background(), rules.Action{Kind: rules.ActionReply, Text: "x"}, testMsg)
	if out.Delivered {
		t.Error("failed reply must not report delivered")
	}
	if out.Err == nil {
		t.Error("outcome should carry the platform error")
	}
}

func TestDispatchChannelMessage(t *testing.T) {
	client := &mockClient{}
	d := New(client)

	out := d.Dispatch(context.Background(), rules.Action{
		Kind: rules.ActionChannelMessage,
		Text: "Welcome to {server}, {username}",
	}, testMsg)

	if !out.Delivered || len(client.messages) != 1 {
		t.Fatalf("expected one channel message, got %+v", client.messages)
	}
	if client.messages[0] != "Welcome to Test Server, alice" {
		t.Errorf("unexpected text: %q", client.messages[0])
	}
}

func TestDispatchDMBlockedIsSilent(t *testing.T) {
	client := &mockClient{dmErr: errors.New("cannot send messages to this user")}
	d := New(client)

	out := d.Dispatch(context.Background(), rules.Action{Kind: rules.ActionDirectMessage, Text: "psst"}, testMsg)
	if out.Delivered {
		t.Error("blocked DM must not report delivered")
	}
}

func TestDispatchReact(t *testing.T) {
	client := &mockClient{}
	d := New(client)

	out := d.Dispatch(context.Background(), rules.Action{Kind: rules.ActionReact, Emoji: "👍"}, testMsg)
	if !out.Delivered || len(client.reactions) != 1 || client.reactions[0] != "👍" {
		t.Errorf("unexpected reactions: %v", client.reactions)
	}
}

func TestDispatchTimeoutDeletesAndNotifies(t *testing.T) {
	client := &mockClient{}
	d := New(client)

	out := d.Dispatch(context.Background(), rules.Action{
		Kind:          rules.ActionTimeout,
		Duration:      60 * time.Second,
		DeleteMessage: true,
		Notice:        "{user} has been muted.",
	}, testMsg)

	if !out.Delivered {
		t.Fatalf("expected delivered, got %+v", out)
	}
	if len(client.timeouts) != 1 || client.timeouts[0] != 60*time.Second {
		t.Errorf("unexpected timeouts: %v", client.timeouts)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "m1" {
		t.Errorf("expected triggering message deleted, got %v", client.deleted)
	}
	if len(client.transients) != 1 || client.transients[0] != "<@123> has been muted." {
		t.Errorf("unexpected notice: %v", client.transients)
	}
}

func TestDispatchTimeoutPermissionFailureAbortsMute(t *testing.T) {
	client := &mockClient{timeoutErr: errors.New("missing permission")}
	d := New(client)

	out := d.Dispatch(context.Background(), rules.Action{
		Kind:          rules.ActionTimeout,
		Duration:      time.Minute,
		DeleteMessage: true,
		Notice:        "muted",
	}, testMsg)

	if out.Delivered {
		t.Error("failed timeout must not report delivered")
	}
	if len(client.deleted) != 0 {
		t.Error("message must not be deleted when the mute is aborted")
	}
	if len(client.transients) != 0 {
		t.Error("no notice should be posted when the mute is aborted")
	}
}

func TestDispatchDeleteOnly(t *testing.T) {
	client := &mockClient{}
	d := New(client)

	out := d.Dispatch(context.Background(), rules.Action{
		Kind:   rules.ActionDeleteOnly,
		Notice: "message removed",
	}, testMsg)

	if !out.Delivered || len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %+v", client.deleted)
	}
	if len(client.transients) != 1 {
		t.Errorf("expected transient notice, got %v", client.transients)
	}
}

func TestDispatchUnknownKindDoesNothing(t *testing.T) {
	client := &mockClient{}
	d := New(client)

	out := d.Dispatch(context.Background(), rules.Action{Kind: "teleport"}, testMsg)
	if out.Delivered {
		t.Error("unknown kind must not report delivered")
	}
	if len(client.replies)+len(client.messages)+len(client.dms)+len(client.reactions)+len(client.deleted)+len(client.timeouts) != 0 {
		t.Error("unknown kind must have no side effects")
	}
}

// Full message path: a contains rule on "hello" matches "Hello there"
// and the reply "Hi {user}!" goes out as "Hi <@123>!".
func TestEvaluateThenDispatch(t *testing.T) {
	doc := &rules.Document{
		Enabled: true,
		Rules: []rules.Rule{{
			ID: 1, Trigger: "hello", MatchType: rules.MatchContains,
			ReplyType: rules.ReplyReply, Reply: "Hi {user}!", Enabled: true,
		}},
	}

	res := rules.Evaluate(doc, rules.Message{ChannelID: "c1", Content: "Hello there"})
	if res == nil {
		t.Fatal("expected match")
	}

	action, ok := res.Rule.Action()
	if !ok {
		t.Fatal("expected resolvable action")
	}

	client := &mockClient{}
	out := New(client).Dispatch(context.Background(), action, testMsg)
	if !out.Delivered {
		t.Fatalf("expected delivery, got %+v", out)
	}
	if client.replies[0] != "Hi <@123>!" {
		t.Errorf("unexpected reply: %q", client.replies[0])
	}
}
