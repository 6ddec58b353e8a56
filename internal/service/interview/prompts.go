package interview

import (
	"fmt"
	"strings"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
)

// Script holds everything locale-dependent about an interview: the director
// persona, the closing keywords and the defaults used when the model omits a field.
type Script struct {
	SystemPrompt    string
	SubjectHeader   string
	NameLabel       string
	GenderLabel     string
	BeginMessage    string
	ClosingKeywords []string

	SynthesisSystem string
	SpeakerModel    string
	SpeakerUser     string

	Defaults ProfileDefaults
}

// ProfileDefaults fill profile fields the model left out.
type ProfileDefaults struct {
	Title        string
	Subtitle     string
	Analysis     string
	Narrative    string
	Camera       string
	Lighting     string
	Motion       string
	UnknownRole  string
	UnknownMovie string
}

var scripts = map[locale.Locale]*Script{
	locale.ZH: {
		SystemPrompt: `你是一位经验丰富的电影导演，正在为一部还没有名字的电影主持一场"试镜"。坐在你对面的不是演员，而是一个普通人，你要通过聊天发现他身上的电影感。

试镜规则：
- 每次只问一个问题，语气像导演在片场说戏，简短、有画面感，不超过80个字。
- 先从日常切入（早晨、通勤、衣柜、最近一次心动），再逐步深入到选择、遗憾和渴望。
- 根据对方的回答追问细节，不要重复提问，也不要给出评价或分析。
- 试镜至少进行8轮。当你认为已经看清楚这个人时，用一句收尾的话结束，并在结尾说"杀青"或"今天的试镜到此结束"。
- 不要提前透露你会把对方匹配成哪个电影角色。`,
		SubjectHeader:   "试镜对象信息：",
		NameLabel:       "称呼",
		GenderLabel:     "性别",
		BeginMessage:    "开始",
		ClosingKeywords: []string{"杀青", "今天的试镜到此结束", "Cut", "cut"},
		SynthesisSystem: "你是一位电影导演兼造型指导。你只输出一个JSON对象，不输出任何解释。",
		SpeakerModel:    "导演",
		SpeakerUser:     "试镜者",
		Defaults: ProfileDefaults{
			Title:        "未命名的主角",
			Subtitle:     "一部还在拍摄中的电影",
			Analysis:     "镜头还在寻找你的最佳角度。",
			Narrative:    "故事刚刚开场，你站在光里，还没有说出第一句台词。",
			Camera:       "中景平视，给人物留出呼吸的空间。",
			Lighting:     "柔和的侧光，保留一半阴影。",
			Motion:       "缓慢推近，让情绪自己浮上来。",
			UnknownRole:  "未知角色",
			UnknownMovie: "未知电影",
		},
	},
	locale.EN: {
		SystemPrompt: `You are a seasoned film director running a "screen test" for a film that has no title yet. The person across from you is not an actor but an ordinary person, and your job is to discover what is cinematic about them through conversation.

Rules of the screen test:
- Ask exactly one question at a time, phrased like a director giving notes on set: short, visual, under 60 words.
- Start with the everyday (mornings, the commute, the wardrobe, the last time their heart skipped) and move gradually toward choices, regrets and longings.
- Follow up on details from their answers. Never repeat a question and never offer evaluation or analysis.
- Run at least 8 rounds. When you feel you truly see this person, close with one final line ending in "Cut." or "That's a wrap."
- Never reveal which film character you might match them with.`,
		SubjectHeader:   "About the person in front of the camera:",
		NameLabel:       "Name",
		GenderLabel:     "Gender",
		BeginMessage:    "Begin.",
		ClosingKeywords: []string{"Cut", "cut", "That's a wrap", "that's a wrap"},
		SynthesisSystem: "You are a film director and costume designer. You output a single JSON object and nothing else.",
		SpeakerModel:    "Director",
		SpeakerUser:     "Subject",
		Defaults: ProfileDefaults{
			Title:        "The Untitled Lead",
			Subtitle:     "A film still in production",
			Analysis:     "The camera is still searching for your best angle.",
			Narrative:    "The story has just begun. You stand in the light, your first line not yet spoken.",
			Camera:       "Eye-level medium shot with room to breathe.",
			Lighting:     "Soft side light, keeping half the face in shadow.",
			Motion:       "A slow push-in that lets the emotion surface on its own.",
			UnknownRole:  "Unknown role",
			UnknownMovie: "Unknown film",
		},
	},
}

// ScriptFor returns the script for loc, falling back to Chinese.
func ScriptFor(loc locale.Locale) *Script {
	if script, ok := scripts[loc]; ok {
		return script
	}
	return scripts[locale.ZH]
}

// BuildSystemPrompt appends the subject block when a name or gender hint is given.
func (s *Script) BuildSystemPrompt(displayName, genderHint string) string {
	displayName = strings.TrimSpace(displayName)
	genderHint = strings.TrimSpace(genderHint)
	if displayName == "" && genderHint == "" {
		return s.SystemPrompt
	}

	var builder strings.Builder
	builder.WriteString(s.SystemPrompt)
	builder.WriteString("\n\n")
	builder.WriteString(s.SubjectHeader)
	if displayName != "" {
		builder.WriteString(fmt.Sprintf("\n- %s: %s", s.NameLabel, displayName))
	}
	if genderHint != "" {
		builder.WriteString(fmt.Sprintf("\n- %s: %s", s.GenderLabel, genderHint))
	}
	return builder.String()
}

// HasClosingKeyword reports whether reply contains one of the literal keywords.
// The match is a case-sensitive substring match.
func (s *Script) HasClosingKeyword(reply string) bool {
	for _, keyword := range s.ClosingKeywords {
		if strings.Contains(reply, keyword) {
			return true
		}
	}
	return false
}

// RenderTranscript lays out display messages as alternating speaker lines.
func (s *Script) RenderTranscript(messages []chat.Message) string {
	var builder strings.Builder
	for i, msg := range messages {
		if i > 0 {
			builder.WriteString("\n")
		}
		speaker := s.SpeakerUser
		if msg.Role == chat.RoleModel {
			speaker = s.SpeakerModel
		}
		builder.WriteString(speaker)
		builder.WriteString(": ")
		builder.WriteString(msg.Text)
	}
	return builder.String()
}

const (
	minRoundForKeyword = 8
	maxRounds          = 12
)

// isFinished applies the termination policy to the round reported with this reply.
// It only looks at the current reply.
func isFinished(script *Script, round int, reply string) bool {
	if round >= maxRounds {
		return true
	}
	return round >= minRoundForKeyword && script.HasClosingKeyword(reply)
}
