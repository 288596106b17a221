package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cadence-scheduler-server/modules/common/config"
)

const promptInstruction = "Write a single concise video generation prompt for the following scene of a short-form social video. " +
	"Describe camera movement, subject, and mood in one paragraph. Return only the prompt text.\n\nScene: "

// PromptAuthor - scene 설명을 렌더링 프롬프트로 다듬는 헬퍼
type PromptAuthor struct {
	apiKeys []string
	model   string
}

// NewPromptAuthor - PromptAuthor 생성
func NewPromptAuthor(cfg *config.Config) *PromptAuthor {
	return &PromptAuthor{
		apiKeys: cfg.GeminiAPIKeys,
		model:   cfg.GeminiModel,
	}
}

// AuthorScenePrompt - scene 설명으로 렌더링 프롬프트 생성
// 키가 없거나 전부 실패하면 원본 설명을 그대로 사용한다 (생성 실패 사유가 되면 안 됨)
func (p *PromptAuthor) AuthorScenePrompt(ctx context.Context, description string) string {
	if len(p.apiKeys) == 0 {
		log.Printf("⚠️  No Gemini API keys configured, using raw scene description as prompt")
		return description
	}

	prompt, err := p.generateWithRetry(ctx, promptInstruction+description)
	if err != nil {
		log.Printf("⚠️  Prompt authoring failed, falling back to raw description: %v", err)
		return description
	}

	return prompt
}

// generateWithRetry - 429 에러 시 여러 API 키로 재시도
// 각 키당 최대 3번 재시도
func (p *PromptAuthor) generateWithRetry(ctx context.Context, input string) (string, error) {
	const maxRetriesPerKey = 3
	var lastErr error

	// 각 API 키로 시도
	for keyIndex, apiKey := range p.apiKeys {
		log.Printf("🔑 [Gemini Retry] Trying API key #%d/%d", keyIndex+1, len(p.apiKeys))

		for attempt := 1; attempt <= maxRetriesPerKey; attempt++ {
			if attempt > 1 {
				log.Printf("   🔄 Retry attempt %d/%d for key #%d", attempt, maxRetriesPerKey, keyIndex+1)
			}

			text, err := p.generateOnce(ctx, apiKey, input)
			if err == nil {
				log.Printf("✅ [Gemini Retry] Success with API key #%d (attempt %d/%d)", keyIndex+1, attempt, maxRetriesPerKey)
				return text, nil
			}

			lastErr = err

			// 429가 아닌 다른 에러면 바로 반환 (재시도 안 함)
			if !is429Error(err) {
				log.Printf("❌ [Gemini Retry] Key #%d failed with non-429 error: %v", keyIndex+1, err)
				return "", err
			}

			// 429 에러 - 같은 키로 재시도
			log.Printf("⚠️  [Gemini Retry] Key #%d hit rate limit (429) on attempt %d/%d", keyIndex+1, attempt, maxRetriesPerKey)

			if attempt < maxRetriesPerKey {
				time.Sleep(time.Second * 2)
			}
		}

		log.Printf("⚠️  [Gemini Retry] Key #%d exhausted all %d attempts, trying next key...", keyIndex+1, maxRetriesPerKey)
	}

	return "", fmt.Errorf("all %d API keys exhausted (%d attempts each), last error: %w", len(p.apiKeys), maxRetriesPerKey, lastErr)
}

// generateOnce - 단일 키로 1회 생성 시도
func (p *PromptAuthor) generateOnce(ctx context.Context, apiKey, input string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	resp, err := client.GenerativeModel(p.model).GenerateContent(ctx, genai.Text(input))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("Gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("Gemini returned empty prompt")
	}

	return result, nil
}

// is429Error - 429 Rate Limit 에러인지 확인
func is429Error(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "quota")
}
