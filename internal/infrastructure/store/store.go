package store

import (
	"errors"
	"time"
)

// ErrNotFound 查無資料
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

// today 取 now 的當地日期（時間歸零）
func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
