package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"cadence-scheduler-server/modules/common/config"
)

// Renderer - 외부 렌더링 API 클라이언트
// 비디오 렌더링 자체는 이 서버가 하지 않는다 - 호출만 한다
type Renderer struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewRenderer - Renderer 생성
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{
		endpoint: cfg.RenderAPIEndpoint,
		apiKey:   cfg.RenderAPIKey,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// renderRequest - 렌더링 API 요청
type renderRequest struct {
	Prompt        string `json:"prompt"`
	ContentItemID string `json:"content_item_id"`
	SceneNumber   int    `json:"scene_number"`
}

// renderResponse - 렌더링 API 응답 (base64 본문 또는 다운로드 URL)
type renderResponse struct {
	VideoBase64 string `json:"video_base64,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
}

// Render - scene 프롬프트로 비디오 렌더링 요청, mp4 바이트 반환
func (r *Renderer) Render(ctx context.Context, contentItemID string, sceneNumber int, prompt string) ([]byte, error) {
	if r.endpoint == "" {
		return nil, fmt.Errorf("render API endpoint is not configured")
	}

	reqBody, err := json.Marshal(renderRequest{
		Prompt:        prompt,
		ContentItemID: contentItemID,
		SceneNumber:   sceneNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal render request: %w", err)
	}

	log.Printf("🎥 Rendering scene %d of %s...", sceneNumber, contentItemID)

	req, err := http.NewRequestWithContext(ctx, "POST", r.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create render request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call render API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("render API error (status %d): %s", resp.StatusCode, string(body))
	}

	var renderResp renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&renderResp); err != nil {
		return nil, fmt.Errorf("failed to decode render response: %w", err)
	}

	// base64 본문 우선, 없으면 URL에서 다운로드
	if renderResp.VideoBase64 != "" {
		videoData, err := base64.StdEncoding.DecodeString(renderResp.VideoBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode rendered video: %w", err)
		}
		log.Printf("✅ Scene %d rendered: %d bytes", sceneNumber, len(videoData))
		return videoData, nil
	}

	if renderResp.VideoURL != "" {
		return r.download(ctx, renderResp.VideoURL)
	}

	return nil, fmt.Errorf("render response has neither video_base64 nor video_url")
}

// download - 렌더링 결과 다운로드
func (r *Renderer) download(ctx context.Context, url string) ([]byte, error) {
	log.Printf("📥 Downloading rendered video from: %s", url)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download rendered video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("video download failed (status %d): %s", resp.StatusCode, string(body))
	}

	videoData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered video: %w", err)
	}

	log.Printf("✅ Rendered video downloaded: %d bytes", len(videoData))
	return videoData, nil
}
