package stats_test

import (
	"testing"

	"github.com/locmaymo/api-stats/internal/db"
	"github.com/locmaymo/api-stats/internal/stats"
)

func TestFindDuplicates_SharedHandle(t *testing.T) {
	events := []db.Event{
		{Handle: "alice", APIKey: "K1", ChatCompletionSource: "openai", Timestamp: ts(10, 0)},
		{Handle: "bob", APIKey: "K1", ChatCompletionSource: "openai", Timestamp: ts(11, 0)},
		{Handle: "alice", APIKey: "K2", ChatCompletionSource: "claude", Timestamp: ts(12, 0)},
	}

	rows := stats.FindDuplicates(events)

	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	d := rows[0]
	if d.APIKey != "K1" {
		t.Fatalf("APIKey = %q, want K1", d.APIKey)
	}
	if d.HandleCount != 2 || d.SourceCount != 1 {
		t.Errorf("HandleCount/SourceCount = %d/%d, want 2/1", d.HandleCount, d.SourceCount)
	}
	if d.TotalUsage != 2 {
		t.Errorf("TotalUsage = %d, want 2", d.TotalUsage)
	}
	if len(d.Handles) != 2 || d.Handles[0] != "alice" || d.Handles[1] != "bob" {
		t.Errorf("Handles = %v, want [alice bob]", d.Handles)
	}
	if !d.FirstSeen.Equal(ts(10, 0)) || !d.LastSeen.Equal(ts(11, 0)) {
		t.Errorf("FirstSeen/LastSeen = %v/%v, want %v/%v", d.FirstSeen, d.LastSeen, ts(10, 0), ts(11, 0))
	}
}

func TestFindDuplicates_SharedSourceOnly(t *testing.T) {
	events := []db.Event{
		{Handle: "alice", APIKey: "K1", ChatCompletionSource: "openai", Timestamp: ts(10, 0)},
		{Handle: "alice", APIKey: "K1", ChatCompletionSource: "claude", Timestamp: ts(11, 0)},
	}

	rows := stats.FindDuplicates(events)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 (two sources under one key)", len(rows))
	}
	if rows[0].SourceCount != 2 || rows[0].HandleCount != 1 {
		t.Errorf("SourceCount/HandleCount = %d/%d, want 2/1", rows[0].SourceCount, rows[0].HandleCount)
	}
}

func TestFindDuplicates_SingleIdentityNeverFlagged(t *testing.T) {
	events := []db.Event{
		{Handle: "alice", APIKey: "K1", ChatCompletionSource: "openai", Timestamp: ts(10, 0)},
		{Handle: "alice", APIKey: "K1", ChatCompletionSource: "openai", Timestamp: ts(11, 0)},
		{Handle: "alice", APIKey: "K1", ChatCompletionSource: "openai", Timestamp: ts(12, 0)},
		{Handle: "bob", APIKey: "", ChatCompletionSource: "openai", Timestamp: ts(13, 0)},
	}

	if rows := stats.FindDuplicates(events); len(rows) != 0 {
		t.Errorf("rows = %v, want none", rows)
	}
}

func TestFindDuplicates_OrderedByUsage(t *testing.T) {
	events := []db.Event{
		{Handle: "a", APIKey: "K1", ChatCompletionSource: "s1", Timestamp: ts(10, 0)},
		{Handle: "b", APIKey: "K1", ChatCompletionSource: "s1", Timestamp: ts(10, 1)},
		{Handle: "a", APIKey: "K2", ChatCompletionSource: "s1", Timestamp: ts(10, 2)},
		{Handle: "b", APIKey: "K2", ChatCompletionSource: "s1", Timestamp: ts(10, 3)},
		{Handle: "a", APIKey: "K2", ChatCompletionSource: "s1", Timestamp: ts(10, 4)},
	}

	rows := stats.FindDuplicates(events)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].APIKey != "K2" || rows[1].APIKey != "K1" {
		t.Errorf("order = [%s %s], want [K2 K1]", rows[0].APIKey, rows[1].APIKey)
	}
}
