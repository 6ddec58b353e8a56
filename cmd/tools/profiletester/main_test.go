package main

import (
	"strings"
	"testing"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
)

func TestParseTranscript(t *testing.T) {
	input := `# screen test
model: Sit down. Tell me about the last time you lied.
user: This morning.
It was about breakfast.

Director: Good. Again.
`
	messages, err := parseTranscript(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[1].Role != chat.RoleUser || messages[1].Text != "This morning.\nIt was about breakfast." {
		t.Fatalf("unexpected continuation handling: %+v", messages[1])
	}
	if messages[2].Role != chat.RoleModel || messages[2].Text != "Good. Again." {
		t.Fatalf("unexpected director line: %+v", messages[2])
	}
}

func TestParseTranscriptRejectsLeadingProse(t *testing.T) {
	if _, err := parseTranscript(strings.NewReader("hello there\nuser: hi")); err == nil {
		t.Fatal("expected error for line without role")
	}
	if _, err := parseTranscript(strings.NewReader("\n# nothing\n")); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}
