package schedule

// Option - 게시 주기 옵션 (클라이언트 정적 카탈로그, 프로세스 수명 동안 불변)
type Option struct {
	Value           string `json:"value"`
	Label           string `json:"label"`
	Description     string `json:"description"`
	WeeklyFrequency string `json:"weekly_frequency"`
}

// 주기 슬러그
const (
	TwiceDaily = "twice-daily"
	Daily      = "daily"
	Weekly     = "weekly"
	Monthly    = "monthly"
)

// 게시 주기 카탈로그 - 원격에서 조회하지 않음
var Options = []Option{
	{
		Value:           TwiceDaily,
		Label:           "Twice a day",
		Description:     "Two posts every day, morning and evening",
		WeeklyFrequency: "14x / week",
	},
	{
		Value:           Daily,
		Label:           "Daily",
		Description:     "One post every day",
		WeeklyFrequency: "7x / week",
	},
	{
		Value:           Weekly,
		Label:           "Weekly",
		Description:     "One post every week",
		WeeklyFrequency: "1x / week",
	},
	{
		Value:           Monthly,
		Label:           "Monthly",
		Description:     "One post every month",
		WeeklyFrequency: "~0.25x / week",
	},
}

// Lookup - 슬러그로 옵션 조회
func Lookup(value string) (Option, bool) {
	for _, opt := range Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// IsValid - 슬러그 유효성 확인
func IsValid(value string) bool {
	_, ok := Lookup(value)
	return ok
}
