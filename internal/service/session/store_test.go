package session_test

import (
	"fmt"
	"testing"

	"github.com/luminari-dev/lumi-agent/internal/model/chat"
	"github.com/luminari-dev/lumi-agent/internal/service/session"
)

func TestHistoryUnknownSession(t *testing.T) {
	store := session.NewStore(10)
	if got := store.History("missing"); got != nil {
		t.Fatalf("expected nil history, got %v", got)
	}
}

func TestAppendTurnOrder(t *testing.T) {
	store := session.NewStore(10)

	store.AppendTurn("s1", "안녕!", "안녕, 루미너스!")
	store.AppendTurn("s1", "오늘 뭐해?", "방송 준비 중이야!")

	history := store.History("s1")
	if len(history) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history))
	}

	wantRoles := []string{chat.RoleUser, chat.RoleAssistant, chat.RoleUser, chat.RoleAssistant}
	for i, role := range wantRoles {
		if history[i].Role != role {
			t.Fatalf("message %d: expected role %s, got %s", i, role, history[i].Role)
		}
	}
	if history[2].Content != "오늘 뭐해?" {
		t.Fatalf("unexpected content: %q", history[2].Content)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	store := session.NewStore(10)
	store.AppendTurn("s1", "a", "b")

	history := store.History("s1")
	history[0].Content = "mutated"

	if got := store.History("s1")[0].Content; got != "a" {
		t.Fatalf("store history mutated through returned slice: %q", got)
	}
}

func TestEvictionKeepsRecentSessions(t *testing.T) {
	store := session.NewStore(3)

	for i := 0; i < 5; i++ {
		store.AppendTurn(fmt.Sprintf("s%d", i), "hi", "hello")
	}

	if store.Len() != 3 {
		t.Fatalf("expected 3 sessions after eviction, got %d", store.Len())
	}
	if store.History("s0") != nil || store.History("s1") != nil {
		t.Fatal("oldest sessions should have been evicted")
	}
	if store.History("s4") == nil {
		t.Fatal("newest session should survive eviction")
	}
}

func TestHistoryRefreshesRecency(t *testing.T) {
	store := session.NewStore(2)

	store.AppendTurn("old", "a", "b")
	store.AppendTurn("new", "a", "b")

	// Touch "old" so "new" becomes the eviction candidate.
	store.History("old")
	store.AppendTurn("newer", "a", "b")

	if store.History("old") == nil {
		t.Fatal("recently read session should survive eviction")
	}
	if store.History("new") != nil {
		t.Fatal("least recently used session should have been evicted")
	}
}
