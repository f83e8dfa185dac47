package statsdb

import (
	"context"
	"testing"
	"time"
)

func TestRecordMessageAndSummary(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := db.RecordMessage(ctx, "g1", "c1", "alice", now); err != nil {
			t.Fatalf("RecordMessage: %v", err)
		}
	}
	if err := db.RecordMessage(ctx, "g1", "c2", "bob", now); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}
	// Different guild, must not leak into g1's summary.
	if err := db.RecordMessage(ctx, "g2", "c1", "alice", now); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}

	s, err := db.GuildSummary(ctx, "g1", Day(now), 10)
	if err != nil {
		t.Fatalf("GuildSummary: %v", err)
	}
	if s.TotalMessages != 4 {
		t.Errorf("TotalMessages = %d, want 4", s.TotalMessages)
	}
	if s.ActiveUsers != 2 {
		t.Errorf("ActiveUsers = %d, want 2", s.ActiveUsers)
	}
	if len(s.TopUsers) != 2 || s.TopUsers[0].UserID != "alice" || s.TopUsers[0].Count != 3 {
		t.Errorf("TopUsers = %+v, want alice first with 3", s.TopUsers)
	}
}

func TestSummarySinceDayExcludesOlder(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	old := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if err := db.RecordMessage(ctx, "g1", "c1", "alice", old); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordMessage(ctx, "g1", "c1", "alice", recent); err != nil {
		t.Fatal(err)
	}

	s, err := db.GuildSummary(ctx, "g1", "2026-03-05", 10)
	if err != nil {
		t.Fatalf("GuildSummary: %v", err)
	}
	if s.TotalMessages != 1 {
		t.Errorf("TotalMessages = %d, want 1", s.TotalMessages)
	}
}

func TestModActions(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.RecordModAction(ctx, ModAction{
		GuildID: "g1",
		UserID:  "alice",
		Action:  "timeout",
		Trigger: "spam.example",
		Detail:  "banned word",
	}); err != nil {
		t.Fatalf("RecordModAction: %v", err)
	}
	if err := db.RecordModAction(ctx, ModAction{GuildID: "g2", UserID: "bob", Action: "delete"}); err != nil {
		t.Fatalf("RecordModAction: %v", err)
	}

	got, err := db.RecentModActions(ctx, "g1", 10)
	if err != nil {
		t.Fatalf("RecentModActions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d actions, want 1", len(got))
	}
	a := got[0]
	if a.ID == "" {
		t.Error("expected assigned ID")
	}
	if a.Action != "timeout" || a.UserID != "alice" || a.Trigger != "spam.example" {
		t.Errorf("unexpected action %+v", a)
	}
}
