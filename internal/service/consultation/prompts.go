package consultation

import (
	"fmt"
	"strings"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/profile"
)

// PromptTemplate 描述一种语言下的咨询话术。
type PromptTemplate struct {
	Persona         string
	ProfileHeader   string
	MatchesLabel    string
	StylingsLabel   string
	ContextRules    []string
	Welcome         string
	VisionTask      string
	TextOnlyTask    string
	DefaultVideoAsk string
}

var templates = map[locale.Locale]*PromptTemplate{
	locale.ZH: {
		Persona:       "你是用户的专属电影造型顾问，曾经为这位用户主持过一场试镜，并写下了TA的电影人格档案。",
		ProfileHeader: "用户档案：",
		MatchesLabel:  "匹配角色",
		StylingsLabel: "推荐造型",
		ContextRules: []string{
			"回答围绕穿搭、造型、氛围和镜头感，结合档案里的角色与造型给出具体建议",
			"语气像导演在片场给演员说戏，温和、具体、有画面感",
			"每次回复控制在150字以内，必要时用短句分点",
			"不要编造档案里没有的角色",
		},
		Welcome:         "欢迎回到片场。你的档案《%s》我已经看过了，今天想聊聊哪一场戏的造型？",
		VisionTask:      "请看这张画面里的用户此刻的穿搭与状态，结合档案给出具体的造型建议。用户说：%s",
		TextOnlyTask:    "用户正在视频通话里向你提问，但画面暂时看不清。请只根据档案回答。",
		DefaultVideoAsk: "看看我现在的样子，给我一点建议。",
	},
	locale.EN: {
		Persona:       "You are the user's personal film stylist. You once ran a screen test with this user and wrote their cinematic personality profile.",
		ProfileHeader: "User profile:",
		MatchesLabel:  "Matched characters",
		StylingsLabel: "Recommended looks",
		ContextRules: []string{
			"Keep answers about outfits, styling, mood and how they read on camera, drawing on the characters and looks in the profile",
			"Speak like a director giving notes on set: warm, concrete and visual",
			"Keep each reply under 120 words and use short points when useful",
			"Never invent characters that are not in the profile",
		},
		Welcome:         "Welcome back to set. I've read your profile \"%s\". Which scene shall we dress today?",
		VisionTask:      "Look at what the user is wearing and how they come across in this frame, then give concrete styling advice grounded in the profile. The user says: %s",
		TextOnlyTask:    "The user is asking you over a video call but the picture is not available. Answer from the profile alone.",
		DefaultVideoAsk: "Take a look at me right now and give me some advice.",
	},
}

// templateFor returns the template for loc, falling back to Chinese.
func templateFor(loc locale.Locale) *PromptTemplate {
	if tpl, ok := templates[loc]; ok {
		return tpl
	}
	return templates[locale.ZH]
}

// BuildSystemPrompt grounds the consultant on the stored profile.
func (t *PromptTemplate) BuildSystemPrompt(p profile.PersonalityProfile) string {
	matches := make([]string, 0, len(p.Matches))
	for _, m := range p.Matches {
		matches = append(matches, fmt.Sprintf("%s (%s, %.0f%%)", m.Name, m.Movie, m.MatchRate))
	}
	stylings := make([]string, 0, len(p.StylingVariants))
	for _, s := range p.StylingVariants {
		stylings = append(stylings, s.Title)
	}

	return fmt.Sprintf(`%s

%s
- %s
- %s
- %s: %s
- %s: %s

- %s`,
		t.Persona,
		t.ProfileHeader,
		p.Title,
		p.Analysis,
		t.MatchesLabel, strings.Join(matches, "; "),
		t.StylingsLabel, strings.Join(stylings, "; "),
		strings.Join(t.ContextRules, "\n- "),
	)
}

// WelcomeMessage is the templated first line; no model call is made for it.
func (t *PromptTemplate) WelcomeMessage(p profile.PersonalityProfile) string {
	return fmt.Sprintf(t.Welcome, p.Title)
}
