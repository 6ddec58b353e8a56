package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
)

func TestScriptForFallsBackToChinese(t *testing.T) {
	assert.Same(t, ScriptFor(locale.ZH), ScriptFor(locale.Locale("fr")))
	assert.NotSame(t, ScriptFor(locale.ZH), ScriptFor(locale.EN))
}

func TestBuildSystemPromptSubjectBlock(t *testing.T) {
	script := ScriptFor(locale.ZH)

	assert.Equal(t, script.SystemPrompt, script.BuildSystemPrompt("  ", ""))

	withName := script.BuildSystemPrompt("小林", "")
	assert.Contains(t, withName, script.SubjectHeader)
	assert.Contains(t, withName, "称呼: 小林")
	assert.NotContains(t, withName, script.GenderLabel+":")
}

func TestRenderTranscriptAlternatesSpeakers(t *testing.T) {
	script := ScriptFor(locale.EN)
	out := script.RenderTranscript([]chat.Message{
		{Role: chat.RoleModel, Text: "Action."},
		{Role: chat.RoleUser, Text: "Hi."},
	})
	assert.Equal(t, "Director: Action.\nSubject: Hi.", out)
}
