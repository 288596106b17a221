package checkout

// CheckoutRequest - create-checkout 요청 본문
type CheckoutRequest struct {
	Schedule    string       `json:"schedule"`
	ChannelName string       `json:"channelName"`
	ChannelData *ChannelData `json:"channelData,omitempty"`
}

// ChannelData - 채널 구성 페이로드
// 원격에만 맡기지 않고 디스패치 전에 로컬 검증한다
type ChannelData struct {
	ContentTypes []string `json:"contentTypes,omitempty"`
	Voice        string   `json:"voice,omitempty"`
	TopicMode    string   `json:"topicMode,omitempty"`
	Topics       []string `json:"topics,omitempty"`
	Platform     string   `json:"platform,omitempty"`
	AccountName  string   `json:"accountName,omitempty"`
}

// topicMode 값
const (
	TopicModeAuto   = "auto"
	TopicModeManual = "manual"
)

// CheckoutResponse - create-checkout 응답 본문
// url 부재는 호출자 입장에서 실패 신호
type CheckoutResponse struct {
	URL string `json:"url,omitempty"`
}

// CheckoutSession - 성공 시 반환되는 세션 정보
type CheckoutSession struct {
	URL string `json:"url"`
}
