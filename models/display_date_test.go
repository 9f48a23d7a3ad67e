package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayDate(t *testing.T) {
	created := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		name    string
		content string
		want    time.Time
	}{
		{"dotted", "2024.3.15 공연 안내...", day(2024, 3, 16)},
		{"dotted with spaces", "일시: 2024. 12. 31. 저녁", day(2025, 1, 1)},
		{"dashed", "공지 2023-07-09 연습", day(2023, 7, 10)},
		{"slashed", "2022/1/5", day(2022, 1, 6)},
		{"korean", "2026년 5월 1일 정기공연", day(2026, 5, 2)},
		{"no date", "이번 주 연습은 쉽니다", created},
		{"empty", "", created},
		{"year too old", "2019.3.15 공연", created},
		{"year too new", "2031.3.15 공연", created},
		{"impossible day", "2024.2.30 공연", created},
		{"second match is valid", "2019.1.1 ~ 2024.1.1", day(2024, 1, 2)},
		{"beyond the first 50 runes", strings.Repeat("가", 50) + " 2024.3.15", created},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayDate(tt.content, created))
		})
	}
}
