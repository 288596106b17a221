package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"cadence-scheduler-server/modules/common/supabase"
	"cadence-scheduler-server/modules/schedule"
)

// 호출되는 Edge Function 이름
const functionCreateCheckout = "create-checkout"

// 사용자에게 보여줄 일반 실패 문구
const genericFailureMessage = "Failed to start checkout. Please try again."

var (
	// ErrMissingRedirect - 결제 세션은 생성됐지만 리다이렉트 URL이 없음
	ErrMissingRedirect = errors.New("checkout response has no redirect url")

	// ErrBusy - 이미 진행 중인 checkout 요청이 있음 (동시 호출 직렬화)
	ErrBusy = errors.New("checkout already in progress")

	// ErrValidation - 디스패치 전 로컬 검증 실패
	ErrValidation = errors.New("invalid checkout request")
)

// Notifier - 사용자 알림 채널 (realtime hub가 구현)
type Notifier interface {
	CheckoutReady(url string)
	NotifyError(message string)
}

// Service - 결제 세션 시작 서비스
type Service struct {
	gw       *supabase.Gateway
	notifier Notifier

	// 논리 액션당 미결 호출 1개만 허용
	inFlight atomic.Bool
}

// NewService - Service 생성
func NewService(gw *supabase.Gateway, notifier Notifier) *Service {
	return &Service{
		gw:       gw,
		notifier: notifier,
	}
}

// IsLoading - 호출 진행 중 여부
func (s *Service) IsLoading() bool {
	return s.inFlight.Load()
}

// CreateCheckoutSession - create-checkout Edge Function 호출
// 성공 시 리다이렉트 URL을 알림 채널로 열고 세션을 반환한다
// 진행 중 재호출은 ErrBusy
func (s *Service) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.inFlight.Store(false)

	if err := s.validate(req); err != nil {
		return nil, err
	}

	log.Printf("💳 Creating checkout session: schedule=%s, channel=%s", req.Schedule, req.ChannelName)

	var resp CheckoutResponse
	if err := s.gw.InvokeFunction(ctx, functionCreateCheckout, req, &resp); err != nil {
		log.Printf("❌ [Checkout] create-checkout failed: %v", err)
		s.notifyFailure(err)
		return nil, err
	}

	if resp.URL == "" {
		log.Printf("❌ [Checkout] create-checkout returned no url")
		err := ErrMissingRedirect
		s.notifyFailure(err)
		return nil, err
	}

	log.Printf("✅ Checkout session created: %s", resp.URL)

	// 브라우저 새 탭 열기에 해당 - hub가 클라이언트에 URL을 전달한다
	if s.notifier != nil {
		s.notifier.CheckoutReady(resp.URL)
	}

	return &CheckoutSession{URL: resp.URL}, nil
}

// validate - 디스패치 전 로컬 검증
func (s *Service) validate(req CheckoutRequest) error {
	if !schedule.IsValid(req.Schedule) {
		return fmt.Errorf("%w: unknown schedule option %q", ErrValidation, req.Schedule)
	}
	if req.ChannelName == "" {
		return fmt.Errorf("%w: channelName is required", ErrValidation)
	}
	if req.ChannelData != nil {
		if req.ChannelData.TopicMode == TopicModeManual && len(req.ChannelData.Topics) == 0 {
			return fmt.Errorf("%w: manual topic mode requires at least one topic", ErrValidation)
		}
	}
	return nil
}

// notifyFailure - 사용자 알림 (원격 메시지 보존, 없으면 일반 문구)
func (s *Service) notifyFailure(err error) {
	if s.notifier == nil {
		return
	}
	message := genericFailureMessage
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	s.notifier.NotifyError(message)
}
