package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// 업로드 대상 버킷과 고정 헤더
const (
	Bucket       = "generated-videos"
	contentType  = "video/mp4"
	cacheControl = "max-age=3600"
)

// ErrConflict - 같은 경로에 객체가 이미 존재 (덮어쓰기 금지)
// 파일명 유일성은 호출자 책임 - content item ID 등을 파일명에 포함할 것
var ErrConflict = errors.New("storage object already exists")

// Uploader - Supabase Storage 업로더
type Uploader struct {
	httpClient *http.Client
	baseURL    string
	publicBase string
	serviceKey string
}

// NewUploader - Uploader 생성
// publicBase는 공개 URL 프리픽스 (비어 있으면 baseURL에서 유도)
func NewUploader(baseURL, publicBase, serviceKey string) *Uploader {
	if publicBase == "" {
		publicBase = baseURL + "/storage/v1/object/public/"
	}
	return &Uploader{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		publicBase: publicBase,
		serviceKey: serviceKey,
	}
}

// Upload - 비디오 버퍼를 generated-videos 버킷에 업로드
// 덮어쓰기 금지 (x-upsert: false), 재시도 없음
// 성공 시 객체 경로와 공개 URL을 모두 반환한다
func (u *Uploader) Upload(ctx context.Context, data []byte, fileName string) (string, string, error) {
	filePath := fmt.Sprintf("%s/%s", Bucket, fileName)
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s", u.baseURL, filePath)

	log.Printf("📤 Uploading video to storage: %s (%d bytes)", filePath, len(data))

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+u.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", cacheControl)
	req.Header.Set("x-upsert", "false")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to upload video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		log.Printf("⚠️  Upload conflict: %s already exists", filePath)
		return "", "", fmt.Errorf("%w: %s", ErrConflict, filePath)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	publicURL := u.PublicURL(fileName)
	log.Printf("✅ Video uploaded successfully: %s", filePath)
	log.Printf("   🔗 Public URL: %s", publicURL)

	return filePath, publicURL, nil
}

// PublicURL - 객체의 공개 URL 계산
func (u *Uploader) PublicURL(fileName string) string {
	return fmt.Sprintf("%s%s/%s", strings.TrimRight(u.publicBase, "/")+"/", Bucket, fileName)
}
