package schedule

// WeeklyGrid - 주간 게시 그리드 (UI 렌더링용 데이터)
// 7일 x 슬롯 구조로, 각 요일의 게시 슬롯을 표시한다
type WeeklyGrid struct {
	Option string    `json:"option"`
	Days   []GridDay `json:"days"`
}

// GridDay - 요일별 게시 슬롯
type GridDay struct {
	Day   string   `json:"day"`
	Slots []string `json:"slots"`
}

var weekDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// BuildWeeklyGrid - 주기 옵션에 맞는 주간 그리드 생성
// monthly는 주 단위 그리드에서 월요일 한 칸만 표시 (4주 중 1주 게시)
func BuildWeeklyGrid(optionValue string) (WeeklyGrid, bool) {
	if !IsValid(optionValue) {
		return WeeklyGrid{}, false
	}

	grid := WeeklyGrid{Option: optionValue, Days: make([]GridDay, 0, len(weekDays))}

	for i, day := range weekDays {
		var slots []string

		switch optionValue {
		case TwiceDaily:
			slots = []string{"09:00", "18:00"}
		case Daily:
			slots = []string{"12:00"}
		case Weekly:
			if i == 0 {
				slots = []string{"12:00"}
			}
		case Monthly:
			if i == 0 {
				slots = []string{"12:00 (first week only)"}
			}
		}

		grid.Days = append(grid.Days, GridDay{Day: day, Slots: slots})
	}

	return grid, true
}
