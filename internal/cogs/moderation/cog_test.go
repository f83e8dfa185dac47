package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/statsdb"
)

type fakeActor struct {
	kicks  []string
	bans   []string
	purged int
	fail   bool
}

func (f *fakeActor) KickMember(ctx context.Context, guildID, userID, reason string) error {
	if f.fail {
		return errors.New("missing permissions")
	}
	f.kicks = append(f.kicks, userID)
	return nil
}

func (f *fakeActor) BanMember(ctx context.Context, guildID, userID, reason string) error {
	if f.fail {
		return errors.New("missing permissions")
	}
	f.bans = append(f.bans, userID)
	return nil
}

func (f *fakeActor) PurgeMessages(ctx context.Context, channelID string, limit int) (int, error) {
	if f.fail {
		return 0, errors.New("missing permissions")
	}
	f.purged += limit
	return limit, nil
}

func newTestCog(t *testing.T) (*Cog, *fakeActor, *statsdb.DB) {
	t.Helper()
	db, err := statsdb.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	actor := &fakeActor{}
	return New(actor, db), actor, db
}

func interaction(opts map[string]any, resp *string) *platform.Interaction {
	return platform.NewInteraction("g1", "Test Guild", "c1", "admin", "admin", true, opts,
		func(text string, ephemeral bool) error {
			*resp = text
			return nil
		})
}

func TestKickRecordsAudit(t *testing.T) {
	cog, actor, db := newTestCog(t)

	var resp string
	cog.handleKick(context.Background(), interaction(map[string]any{"user": "troll", "reason": "spamming"}, &resp))

	if len(actor.kicks) != 1 || actor.kicks[0] != "troll" {
		t.Errorf("kicks = %v, want [troll]", actor.kicks)
	}
	if !strings.Contains(resp, "<@troll>") || !strings.Contains(resp, "spamming") {
		t.Errorf("response = %q", resp)
	}

	actions, err := db.RecentModActions(context.Background(), "g1", 5)
	if err != nil {
		t.Fatalf("RecentModActions: %v", err)
	}
	if len(actions) != 1 || actions[0].Action != "kick" || actions[0].UserID != "troll" {
		t.Errorf("audit = %+v, want one kick of troll", actions)
	}
}

func TestBanFailureIsNotAudited(t *testing.T) {
	cog, actor, db := newTestCog(t)
	actor.fail = true

	var resp string
	cog.handleBan(context.Background(), interaction(map[string]any{"user": "troll"}, &resp))

	if len(actor.bans) != 0 {
		t.Errorf("bans = %v, want none", actor.bans)
	}
	if !strings.Contains(resp, "permission") {
		t.Errorf("response = %q, want permission error", resp)
	}

	actions, err := db.RecentModActions(context.Background(), "g1", 5)
	if err != nil {
		t.Fatalf("RecentModActions: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("audit = %+v, want empty after failed ban", actions)
	}
}

func TestClearValidatesAmount(t *testing.T) {
	cog, actor, _ := newTestCog(t)

	for _, amount := range []int64{0, -5, 101} {
		var resp string
		cog.handleClear(context.Background(), interaction(map[string]any{"amount": amount}, &resp))
		if !strings.Contains(resp, "between 1 and 100") {
			t.Errorf("amount %d: response = %q", amount, resp)
		}
	}
	if actor.purged != 0 {
		t.Errorf("purged = %d, want 0 for out-of-range amounts", actor.purged)
	}
}

func TestClearPurgesAndAudits(t *testing.T) {
	cog, actor, db := newTestCog(t)

	var resp string
	cog.handleClear(context.Background(), interaction(map[string]any{"amount": int64(10)}, &resp))

	if actor.purged != 10 {
		t.Errorf("purged = %d, want 10", actor.purged)
	}
	if !strings.Contains(resp, "Deleted 10") {
		t.Errorf("response = %q", resp)
	}

	actions, err := db.RecentModActions(context.Background(), "g1", 5)
	if err != nil {
		t.Fatalf("RecentModActions: %v", err)
	}
	if len(actions) != 1 || actions[0].Action != "clear" || actions[0].UserID != "admin" {
		t.Errorf("audit = %+v, want one clear by admin", actions)
	}
}
