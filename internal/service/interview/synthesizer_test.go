package interview

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
	chatservice "github.com/salt-byte/cinematic-mirror/backend/internal/service/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/storage"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
)

// startedSession registers a short interview directly in the store.
func startedSession(f *fixture, loc locale.Locale) string {
	return f.sessions.Create(chat.Session{
		Kind:    chat.KindInterview,
		OwnerID: "owner",
		Locale:  loc,
		Messages: []chat.Message{
			chat.NewMessage(chat.RoleModel, "opening"),
			chat.NewMessage(chat.RoleUser, "I walk at night."),
			chat.NewMessage(chat.RoleModel, "Cut."),
		},
		TurnCount: 1,
	})
}

func TestGenerateProfileDefaultsMissingFields(t *testing.T) {
	f := newFixture(t)
	id := startedSession(f, locale.EN)
	f.model.push(`{"analysis":"quiet and exact"}`)

	p, err := f.svc.GenerateProfile(context.Background(), id)
	require.NoError(t, err)

	defaults := ScriptFor(locale.EN).Defaults
	assert.Equal(t, defaults.Title, p.Title)
	assert.Equal(t, defaults.Subtitle, p.Subtitle)
	assert.Equal(t, "quiet and exact", p.Analysis)
	assert.Equal(t, defaults.Camera, p.VisualAdvice.Camera)
	assert.NotNil(t, p.Angles)
	assert.Empty(t, p.Angles)
	assert.NotNil(t, p.Matches)
	assert.Empty(t, p.Matches)
	assert.Empty(t, p.StylingVariants)
	assert.Len(t, p.InterviewHistory, 3)
}

func TestGenerateProfileUsesLocaleDefaults(t *testing.T) {
	f := newFixture(t)
	id := startedSession(f, locale.ZH)
	f.model.push(`{"visualAdvice":{"camera":"手持跟拍"}}`)

	p, err := f.svc.GenerateProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "未命名的主角", p.Title)
	assert.Equal(t, "手持跟拍", p.VisualAdvice.Camera)
	assert.Equal(t, ScriptFor(locale.ZH).Defaults.Lighting, p.VisualAdvice.Lighting)
}

func TestGenerateProfileResolvesMatches(t *testing.T) {
	f := newFixture(t)
	leon, ok := f.catalog.FindByID("leon")
	require.True(t, ok)
	look, _ := leon.FirstStyling()

	output := `{"matches":[
		{"name":"Léon","description":"disciplined"},
		{"name":"Travis Bickle","movie":"Taxi Driver"},
		{"id":"ghost"},
		{"description":"no name at all"},
		"Mia Dolan",
		{"name":"Holly Golightly","matchRate":"140"},
		{"name":"Chow Mo-wan","matchRate":-3}
	]}`

	id := startedSession(f, locale.EN)
	f.model.push(output)
	p, err := f.svc.GenerateProfile(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, p.Matches, 6)

	assert.Equal(t, "Léon", p.Matches[0].Name)
	assert.Equal(t, "Léon: The Professional", p.Matches[0].Movie)
	assert.Equal(t, look.Image, p.Matches[0].Image)
	assert.Equal(t, 85.0, p.Matches[0].MatchRate)
	assert.Equal(t, "disciplined", p.Matches[0].Description)

	assert.Equal(t, "Travis Bickle", p.Matches[1].Name)
	assert.Equal(t, "Taxi Driver", p.Matches[1].Movie)
	assert.Equal(t, 80.0, p.Matches[1].MatchRate)
	assert.Equal(t, placeholderImage("Travis Bickle"), p.Matches[1].Image)

	assert.Equal(t, "Unknown role", p.Matches[2].Name)
	assert.Equal(t, "Unknown film", p.Matches[2].Movie)

	assert.Equal(t, "Mia Dolan", p.Matches[3].Name)
	assert.Equal(t, 100.0, p.Matches[4].MatchRate)
	assert.Equal(t, 0.0, p.Matches[5].MatchRate)

	// Placeholder images are stable across generations.
	id = startedSession(f, locale.EN)
	f.model.push(output)
	again, err := f.svc.GenerateProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, p.Matches[1].Image, again.Matches[1].Image)
}

func TestGenerateProfileConcatenatesStylings(t *testing.T) {
	f := newFixture(t)
	amelie, _ := f.catalog.FindByID("amelie-poulain")
	mia, _ := f.catalog.FindByID("mia-dolan")
	amelieLook, _ := amelie.FirstStyling()
	miaLook, _ := mia.FirstStyling()

	id := startedSession(f, locale.ZH)
	f.model.push("```json\n" + `{
		"matches":[{"id":"amelie-poulain"},{"name":"米娅·多兰"},{"name":"陌生人"}],
		"stylingVariants":[{"title":"蒙马特的红"},{"subtitle":"no title"}],
		"customStyles":[{"title":"雨夜风衣","palette":[{"name":"灰","hex":"#777777"},"藏青"],"materials":["风衣",3]}]
	}` + "\n```")

	p, err := f.svc.GenerateProfile(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, p.StylingVariants, 4)

	assert.Equal(t, amelieLook, p.StylingVariants[0])
	assert.Equal(t, miaLook, p.StylingVariants[1])
	// A model-supplied look with the same title is kept, not merged.
	assert.Equal(t, "蒙马特的红", p.StylingVariants[2].Title)
	assert.Empty(t, p.StylingVariants[2].Image)

	custom := p.StylingVariants[3]
	assert.Equal(t, "雨夜风衣", custom.Title)
	require.Len(t, custom.Palette, 2)
	assert.Equal(t, "#777777", custom.Palette[0].Hex)
	assert.Equal(t, "藏青", custom.Palette[1].Name)
	assert.Equal(t, []string{"风衣"}, custom.Materials)
}

func TestGenerateProfileRejectsUnparseableOutput(t *testing.T) {
	cases := map[string]string{
		"no braces":     "Sorry, I cannot help with that.",
		"broken json":   "{title: unquoted}",
		"two objects":   `{"a":1} and then {"b":2}`,
		"closing first": "} nothing {",
	}

	for name, output := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			id := startedSession(f, locale.EN)
			f.model.push(output)

			_, err := f.svc.GenerateProfile(context.Background(), id)
			require.ErrorIs(t, err, ErrProfileFormat)
			assert.Equal(t, apperror.CodeProfileFormat, apperror.CodeOf(err))
			assert.Zero(t, f.profiles.Len())

			_, err = f.sessions.Get(id)
			assert.NoError(t, err, "session must survive a format error so the client can retry")
		})
	}
}

func TestGenerateProfileFallsBackToShadowRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.shadows.Create(ctx, storage.SessionShadow{
		ID:      "lost-session",
		OwnerID: "owner-7",
		Status:  storage.StatusFinished,
		Round:   9,
		Locale:  locale.EN,
		Messages: []chat.Message{
			chat.NewMessage(chat.RoleModel, "opening"),
			chat.NewMessage(chat.RoleUser, "I collect old keys."),
		},
	}))
	f.model.push(`{"title":"Keeper of Doors"}`)

	p, err := f.svc.GenerateProfile(ctx, "lost-session")
	require.NoError(t, err)
	assert.Equal(t, "owner-7", p.OwnerID)
	assert.Len(t, p.InterviewHistory, 2)

	prompt := f.model.lastInput()[1].Content
	assert.Contains(t, prompt, "Subject: I collect old keys.")
	assert.Contains(t, prompt, "Director: opening")

	shadow, err := f.shadows.Find(ctx, "lost-session")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusCompleted, shadow.Status)
}

func TestGenerateProfileUnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GenerateProfile(context.Background(), "nowhere")
	require.ErrorIs(t, err, chatservice.ErrSessionNotFound)
	assert.Zero(t, f.model.calls())
	assert.Zero(t, f.profiles.Len())
}

func TestGenerateProfileIgnoresConsultationSessions(t *testing.T) {
	f := newFixture(t)
	id := f.sessions.Create(chat.Session{Kind: chat.KindConsultation, OwnerID: "u"})

	_, err := f.svc.GenerateProfile(context.Background(), id)
	assert.ErrorIs(t, err, chatservice.ErrSessionNotFound)
}

func TestSynthesisPromptListsCatalogWithoutStylings(t *testing.T) {
	f := newFixture(t)
	id := startedSession(f, locale.EN)
	f.model.push(`{}`)

	_, err := f.svc.GenerateProfile(context.Background(), id)
	require.NoError(t, err)

	input := f.model.lastInput()
	require.Len(t, input, 2)
	prompt := input[1].Content
	assert.Contains(t, prompt, "id=chow-mo-wan | Chow Mo-wan | In the Mood for Love")
	assert.Contains(t, prompt, `"visualAdvice":{"camera"`)
	assert.NotContains(t, prompt, "/images/characters/")
	assert.True(t, strings.Contains(prompt, "Subject: I walk at night."))
}

func TestExtractObjectIsGreedy(t *testing.T) {
	obj, err := extractObject("noise {\"a\":{\"b\":[1,2]}} trailing } ignored? no")
	require.Error(t, err, "the span runs to the last closing brace")
	assert.Nil(t, obj)

	obj, err = extractObject("prefix {\"a\":{\"b\":[1,2]}} suffix")
	require.NoError(t, err)
	assert.Contains(t, obj, "a")
}
