package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts は日付項目として受け付けるフォーマット。
// フォームの date 入力は YYYY-MM-DD を送信する。
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// monthAbbr は英語ロケール固定の月の略称。
var monthAbbr = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// ParseDate は日付文字列を解析する。YYYY-MM-DD はタイムゾーン変換なしの暦日として扱う。
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthShort は日付の月を3文字の略称（Jan〜Dec）で返す。
// 空または解析できない日付には空文字列を返す。
func MonthShort(date string) string {
	t, ok := ParseDate(date)
	if !ok {
		return ""
	}
	return monthAbbr[t.Month()-1]
}

// WeekOfMonth は日付の週ラベルを序数（1st、2nd、…）で返す。
// 計算式は ceil((日 + 1 - 曜日) / 7) + 1（曜日は日曜=0〜土曜=6）。
// ISO週番号ではない。
func WeekOfMonth(date string) string {
	t, ok := ParseDate(date)
	if !ok {
		return ""
	}
	n := float64(t.Day() + 1 - int(t.Weekday()))
	week := int(math.Ceil(n/7)) + 1
	return Ordinal(week)
}

// Ordinal は整数に英語の序数接尾辞を付ける（11th、12th、13th は例外）。
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
