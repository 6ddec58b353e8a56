package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/salt-byte/cinematic-mirror/backend/internal/config"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
	"github.com/salt-byte/cinematic-mirror/backend/internal/service/ai"
	chatservice "github.com/salt-byte/cinematic-mirror/backend/internal/service/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/service/interview"
	"github.com/salt-byte/cinematic-mirror/backend/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	if !cfg.AI.Enabled() {
		log.Fatalf("大模型未配置 (provider=%s)，请先设置 LLM_* 环境变量", cfg.AI.Provider)
	}

	transcriptPath := flag.String("transcript", "", "访谈记录文件，每行 `user: ...` 或 `model: ...`，留空则读取 stdin")
	language := flag.String("lang", "", "zh 或 en，默认使用 DEFAULT_LOCALE")
	timeout := flag.Duration("timeout", 90*time.Second, "请求超时时间")
	flag.Parse()

	input := io.Reader(os.Stdin)
	if *transcriptPath != "" {
		f, err := os.Open(*transcriptPath)
		if err != nil {
			log.Fatalf("无法打开访谈记录: %v", err)
		}
		defer f.Close()
		input = f
	}

	messages, err := parseTranscript(input)
	if err != nil {
		log.Fatalf("访谈记录解析失败: %v", err)
	}
	log.Printf("loaded %d transcript lines", len(messages))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	chatModel, err := ai.NewChatModel(ctx, cfg.AI, nil)
	if err != nil {
		log.Fatalf("初始化大模型失败: %v", err)
	}

	// 通过影子会话行注入访谈记录，走与重启恢复相同的路径
	shadows := storage.NewMemorySessionShadowRepo()
	sessionID := "tester-" + uuid.NewString()
	if err := shadows.Create(ctx, storage.SessionShadow{
		ID:       sessionID,
		OwnerID:  "profiletester",
		Status:   storage.StatusFinished,
		Round:    len(messages)/2 + 1,
		Locale:   locale.Parse(*language, cfg.DefaultLocale),
		Messages: messages,
	}); err != nil {
		log.Fatalf("写入会话失败: %v", err)
	}

	svc := interview.NewService(interview.Deps{
		Sessions:      chatservice.NewStore(),
		Model:         chatModel,
		Catalog:       character.NewMemoryStore(character.Seed()),
		Profiles:      storage.NewMemoryProfileRepo(),
		Shadows:       shadows,
		DefaultLocale: cfg.DefaultLocale,
	})

	start := time.Now()
	p, err := svc.GenerateProfile(ctx, sessionID)
	if err != nil {
		log.Fatalf("档案生成失败: %v", err)
	}
	log.Printf("profile generated in %s matches=%d stylings=%d", time.Since(start).Round(time.Millisecond), len(p.Matches), len(p.StylingVariants))

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(p); err != nil {
		log.Fatalf("输出失败: %v", err)
	}
}

// parseTranscript reads `role: text` lines. Blank lines and lines starting with
// '#' are skipped; lines without a known role continue the previous message.
func parseTranscript(r io.Reader) ([]chat.Message, error) {
	var messages []chat.Message
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		prefix, text, found := strings.Cut(line, ":")
		role, known := parseRole(prefix)
		if !found || !known {
			if len(messages) == 0 {
				return nil, fmt.Errorf("line %d: expected `user:` or `model:` prefix", lineNo)
			}
			last := &messages[len(messages)-1]
			last.Text += "\n" + line
			continue
		}
		messages = append(messages, chat.NewMessage(role, strings.TrimSpace(text)))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("transcript is empty")
	}
	return messages, nil
}

func parseRole(prefix string) (chat.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(prefix)) {
	case "user", "subject", "试镜者":
		return chat.RoleUser, true
	case "model", "assistant", "director", "导演":
		return chat.RoleModel, true
	default:
		return "", false
	}
}
