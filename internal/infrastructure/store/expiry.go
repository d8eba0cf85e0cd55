package store

import "time"

// 期限狀態
const (
	ExpiryOK           = "ok"
	ExpiryExpiringSoon = "expiring_soon"
	ExpiryExpired      = "expired"
)

// ExpiringSoonDays 剩餘天數小於等於此值視為即將到期
const ExpiringSoonDays = 3

// ExpiryStatus 依到期日判斷狀態，無到期日或無法解析時為 ok
func ExpiryStatus(expiry *string, now time.Time) string {
	if expiry == nil || *expiry == "" {
		return ExpiryOK
	}
	date, err := parseDate(*expiry)
	if err != nil {
		return ExpiryOK
	}
	days := int(date.Sub(today(now)).Hours() / 24)
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= ExpiringSoonDays:
		return ExpiryExpiringSoon
	default:
		return ExpiryOK
	}
}
