// internal/history/store_test.go
package history

import (
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenAt(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetConversation(t *testing.T) {
	store := testStore(t)

	if err := store.CreateConversation("conv-1", "First chat"); err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	c, err := store.GetConversation("conv-1")
	if err != nil {
		t.Fatalf("Failed to get conversation: %v", err)
	}
	if c.ID != "conv-1" || c.Title != "First chat" {
		t.Errorf("Unexpected conversation: %+v", c)
	}
}

func TestGetConversationMissing(t *testing.T) {
	store := testStore(t)
	if _, err := store.GetConversation("nope"); err == nil {
		t.Error("Expected an error for a missing conversation")
	}
}

func TestMessagesPreserveOrder(t *testing.T) {
	store := testStore(t)
	store.CreateConversation("conv-1", "Chat")

	contents := []string{"first", "second", "third"}
	roles := []string{"user", "assistant", "user"}
	for i := range contents {
		if _, err := store.AddMessage("conv-1", roles[i], contents[i]); err != nil {
			t.Fatalf("Failed to add message: %v", err)
		}
	}

	msgs, err := store.GetMessages("conv-1")
	if err != nil {
		t.Fatalf("Failed to get messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}
	for i := range msgs {
		if msgs[i].Content != contents[i] {
			t.Errorf("Message %d: expected %q, got %q", i, contents[i], msgs[i].Content)
		}
		if msgs[i].Role != roles[i] {
			t.Errorf("Message %d: expected role %q, got %q", i, roles[i], msgs[i].Role)
		}
	}
}

func TestListConversationsRecencyOrder(t *testing.T) {
	store := testStore(t)
	store.CreateConversation("old", "Old chat")

	// CURRENT_TIMESTAMP has second resolution, so force distinct stamps
	time.Sleep(1100 * time.Millisecond)
	store.CreateConversation("new", "New chat")

	convs, err := store.ListConversations()
	if err != nil {
		t.Fatalf("Failed to list conversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("Expected 2 conversations, got %d", len(convs))
	}
	if convs[0].ID != "new" {
		t.Errorf("Expected the most recent conversation first, got %q", convs[0].ID)
	}

	// touching the older conversation bumps it to the top
	time.Sleep(1100 * time.Millisecond)
	if _, err := store.AddMessage("old", "user", "hello again"); err != nil {
		t.Fatal(err)
	}

	convs, err = store.ListConversations()
	if err != nil {
		t.Fatal(err)
	}
	if convs[0].ID != "old" {
		t.Errorf("Expected the touched conversation first, got %q", convs[0].ID)
	}
}

func TestRenameConversation(t *testing.T) {
	store := testStore(t)
	store.CreateConversation("conv-1", "Before")

	if err := store.RenameConversation("conv-1", "After"); err != nil {
		t.Fatalf("Failed to rename: %v", err)
	}

	c, err := store.GetConversation("conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if c.Title != "After" {
		t.Errorf("Expected title After, got %q", c.Title)
	}
}
