package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/profile"
	"github.com/salt-byte/cinematic-mirror/backend/internal/service/ai"
	chatservice "github.com/salt-byte/cinematic-mirror/backend/internal/service/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/storage"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
)

// 格式示例作为模板变量传入，不直接写进模板正文。
const profileShape = `{"title":"","subtitle":"","analysis":"","narrative":"",` +
	`"angles":[{"label":"","essence":""}],` +
	`"visualAdvice":{"camera":"","lighting":"","motion":""},` +
	`"matches":[{"id":"","name":"","movie":"","matchRate":90,"description":""}],` +
	`"customStyles":[{"title":"","subtitle":"","palette":[{"name":"","hex":"#000000"}],"materials":[""],"tailoring":"","narrative":"","directorNote":""}]}`

var synthesisPrompts = map[locale.Locale]string{
	locale.ZH: `下面是一份角色库和一场试镜的完整记录。请根据试镜者的回答，写出TA的"电影人格档案"。

角色库（只能从中挑选 matches，id 必须原样填写）：
{{.catalog}}

试镜记录：
{{.transcript}}

要求：
- matches 选 2 到 3 个最像的角色，matchRate 为 0 到 100 的整数。
- angles 给出 3 到 4 个观察角度，每个角度用一句话概括。
- customStyles 可以额外设计 0 到 2 套不属于任何角色的造型。
- 所有文字使用中文。

只输出如下结构的 JSON：
{{.shape}}`,
	locale.EN: `Below are a character catalog and the full record of a screen test. Based on the subject's answers, write their "cinematic personality profile".

Catalog (pick matches only from here and copy the id verbatim):
{{.catalog}}

Screen test record:
{{.transcript}}

Requirements:
- Pick 2 to 3 closest characters for matches; matchRate is an integer from 0 to 100.
- Give 3 to 4 angles, each summed up in one sentence.
- customStyles may add 0 to 2 looks that belong to no character.
- Write all text in English.

Output only JSON with this structure:
{{.shape}}`,
}

// interviewSource is the minimum state needed to synthesize a profile.
type interviewSource struct {
	ownerID  string
	locale   locale.Locale
	messages []chat.Message
}

// GenerateProfile synthesizes and persists a profile from a finished (or
// abandoned) interview. The session is removed from memory on success.
func (s *Service) GenerateProfile(ctx context.Context, sessionID string) (profile.PersonalityProfile, error) {
	if s.model == nil {
		return profile.PersonalityProfile{}, ai.ErrUnavailable
	}

	source, err := s.resolveSource(ctx, sessionID)
	if err != nil {
		return profile.PersonalityProfile{}, err
	}

	script := ScriptFor(source.locale)
	input, err := s.synthesisInput(ctx, script, source)
	if err != nil {
		return profile.PersonalityProfile{}, apperror.Upstream("PROMPT_RENDER_FAILED", "failed to build profile prompt", err)
	}

	output, err := ai.Complete(ctx, s.model, input)
	if err != nil {
		return profile.PersonalityProfile{}, ai.UpstreamError(err)
	}

	obj, err := extractObject(output)
	if err != nil {
		s.metrics.ProfileFormatFailed()
		log.Printf("[interview] unusable profile output for session=%s: %v", sessionID, err)
		return profile.PersonalityProfile{}, apperror.ProfileFormat(ErrProfileFormat.Message, err)
	}

	p := buildProfile(obj, s.catalog, source, script.Defaults)
	if err := s.profiles.Create(ctx, p); err != nil {
		return profile.PersonalityProfile{}, apperror.Upstream("PROFILE_SAVE_FAILED", "failed to save profile", err)
	}
	s.metrics.ProfileCreated()

	s.sideEffect("complete shadow row", sessionID, func() error {
		return s.shadows.Complete(ctx, sessionID, p.ID)
	})
	s.sessions.Delete(sessionID)

	log.Printf("[interview] profile=%s generated from session=%s matches=%d stylings=%d",
		p.ID, sessionID, len(p.Matches), len(p.StylingVariants))
	return p, nil
}

// resolveSource prefers the live session and falls back to the shadow row.
func (s *Service) resolveSource(ctx context.Context, sessionID string) (interviewSource, error) {
	session, err := s.sessions.Get(sessionID)
	if err == nil {
		if session.Kind != chat.KindInterview {
			return interviewSource{}, chatservice.ErrSessionNotFound
		}
		return interviewSource{ownerID: session.OwnerID, locale: session.Locale, messages: session.Messages}, nil
	}
	if !errors.Is(err, chatservice.ErrSessionNotFound) || s.shadows == nil {
		return interviewSource{}, err
	}

	shadow, err := s.shadows.Find(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return interviewSource{}, chatservice.ErrSessionNotFound
	}
	if err != nil {
		return interviewSource{}, apperror.Upstream("SESSION_LOAD_FAILED", "failed to load interview session", err)
	}

	log.Printf("[interview] session=%s restored from shadow row (status=%s round=%d)", sessionID, shadow.Status, shadow.Round)
	return interviewSource{ownerID: shadow.OwnerID, locale: shadow.Locale, messages: shadow.Messages}, nil
}

func (s *Service) synthesisInput(ctx context.Context, script *Script, source interviewSource) ([]*schema.Message, error) {
	body, ok := synthesisPrompts[source.locale]
	if !ok {
		body = synthesisPrompts[locale.ZH]
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(script.SynthesisSystem),
		schema.UserMessage(body),
	)
	return tpl.Format(ctx, map[string]any{
		"catalog":    catalogSummary(s.catalog, source.locale),
		"transcript": script.RenderTranscript(source.messages),
		"shape":      profileShape,
	})
}

// catalogSummary lists id, name, movie and traits only. Stylings stay out of the prompt.
func catalogSummary(catalog character.Store, loc locale.Locale) string {
	if catalog == nil {
		return ""
	}
	var builder strings.Builder
	for _, c := range catalog.List() {
		builder.WriteString(fmt.Sprintf("- id=%s | %s | %s | %s\n",
			c.ID, c.DisplayName(loc), c.DisplayMovie(loc), strings.Join(c.Traits, ", ")))
	}
	return strings.TrimRight(builder.String(), "\n")
}

// buildProfile fills every field, falling back to the locale defaults.
func buildProfile(obj map[string]any, catalog character.Store, source interviewSource, defaults ProfileDefaults) profile.PersonalityProfile {
	angles := []profile.Angle{}
	for _, item := range listField(obj, "angles") {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		angle := profile.Angle{
			Label:   stringField(entry, "label", "title"),
			Essence: stringField(entry, "essence", "description"),
		}
		if angle.Label == "" && angle.Essence == "" {
			continue
		}
		angles = append(angles, angle)
	}

	advice := objectField(obj, "visualAdvice")
	resolved := resolveMatches(listField(obj, "matches"), catalog, source.locale, defaults)
	matches := make([]profile.CharacterMatch, 0, len(resolved))
	for _, m := range resolved {
		matches = append(matches, m.match)
	}

	history := append([]chat.Message{}, source.messages...)

	return profile.PersonalityProfile{
		ID:        uuid.NewString(),
		OwnerID:   source.ownerID,
		Title:     stringOr(obj, defaults.Title, "title"),
		Subtitle:  stringOr(obj, defaults.Subtitle, "subtitle"),
		Analysis:  stringOr(obj, defaults.Analysis, "analysis"),
		Narrative: stringOr(obj, defaults.Narrative, "narrative"),
		Angles:    angles,
		VisualAdvice: profile.VisualAdvice{
			Camera:   stringOr(advice, defaults.Camera, "camera"),
			Lighting: stringOr(advice, defaults.Lighting, "lighting"),
			Motion:   stringOr(advice, defaults.Motion, "motion"),
		},
		Matches:          matches,
		StylingVariants:  assembleStylings(resolved, obj),
		InterviewHistory: history,
		CreatedAt:        time.Now().UTC(),
	}
}
