package cache

import (
	"time"
)

// preOpenHour は KRX の時間外取引が始まる時刻（韓国時間）です。
const preOpenHour = 8

var seoul = mustLoadSeoul()

func mustLoadSeoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		// tzdata がない環境では固定オフセットを使用（韓国はサマータイムなし）
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// TimeUntilNextPreOpen は次の午前8時（韓国時間）までの期間を返します。
func TimeUntilNextPreOpen() time.Duration {
	return timeUntilNextPreOpen(time.Now())
}

func timeUntilNextPreOpen(now time.Time) time.Duration {
	now = now.In(seoul)
	next := time.Date(now.Year(), now.Month(), now.Day(), preOpenHour, 0, 0, 0, seoul)

	// 今日の午前8時を過ぎている場合は翌日
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
