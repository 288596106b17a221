package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"cadence-scheduler-server/modules/common/config"
)

// Gateway - Supabase 접근 게이트웨이
// 전역 싱글톤 대신 명시적으로 생성해서 각 모듈에 주입한다
type Gateway struct {
	supabase   *supa.Client
	httpClient *http.Client

	baseURL    string
	serviceKey string
}

// New - Gateway 생성
// 접속 정보가 비어 있으면 에러 (조용한 기본값 없음)
func New(cfg *config.Config) (*Gateway, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, fmt.Errorf("supabase url and service key are required")
	}

	supabaseClient, err := supa.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supa.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	return &Gateway{
		supabase:   supabaseClient,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    strings.TrimRight(cfg.SupabaseURL, "/"),
		serviceKey: cfg.SupabaseServiceKey,
	}, nil
}

// From - PostgREST 쿼리 빌더 패스스루
func (g *Gateway) From(table string) *postgrest.QueryBuilder {
	return g.supabase.From(table)
}

// BaseURL - Supabase 엔드포인트
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// ServiceKey - 서비스 키 (storage 업로드 등 raw HTTP 호출용)
func (g *Gateway) ServiceKey() string {
	return g.serviceKey
}

// InvokeFunction - Edge Function 호출
// POST {url}/functions/v1/{name}, 응답 JSON을 out에 언마샬
// 재시도/백오프 없음 - 실패 처리는 호출자 몫
func (g *Gateway) InvokeFunction(ctx context.Context, name string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}

	functionURL := fmt.Sprintf("%s/functions/v1/%s", g.baseURL, name)
	log.Printf("📡 Invoking edge function: %s", name)

	req, err := http.NewRequestWithContext(ctx, "POST", functionURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", name, err)
	}

	req.Header.Set("Authorization", "Bearer "+g.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to invoke %s: %w", name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 원격 에러 메시지를 그대로 보존해서 전파
		return fmt.Errorf("%s failed with status %d: %s", name, resp.StatusCode, remoteMessage(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse %s response: %w", name, err)
		}
	}

	log.Printf("✅ Edge function %s succeeded", name)
	return nil
}

// remoteMessage - 에러 응답 본문에서 message 필드 추출 (없으면 본문 전체)
func remoteMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return string(body)
}
