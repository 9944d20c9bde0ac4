package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gopher0727/LineDesk/internal/models"
)

// 表格里历史数据混有三种日期写法：YYYY/M/D（不补零）、YYYY-MM-DD、ISO 时间戳。
// 统一在这里解析，写回时一律用 FormatForStore 的 YYYY/M/D。

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFlexible 解析表格中的日期字符串，失败返回 ok=false，从不 panic
func ParseFlexible(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return time.Time{}, false
		}
		year, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		month, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		day, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err1 != nil || err2 != nil || err3 != nil {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatForStore 输出 YYYY/M/D（月日不补零），与表格既有格式一致
func FormatForStore(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Year(), int(t.Month()), t.Day())
}

// AddDuration 按加值选项计算新日期
// 半年/一年走日历加法（AddDate 的月份进位），不是固定天数
func AddDuration(t time.Time, option models.DurationOption) time.Time {
	switch option {
	case models.Duration30Days:
		return t.AddDate(0, 0, 30)
	case models.Duration90Days:
		return t.AddDate(0, 0, 90)
	case models.DurationHalfYear:
		return t.AddDate(0, 6, 0)
	case models.DurationOneYear:
		return t.AddDate(1, 0, 0)
	case models.DurationTrial7:
		return t.AddDate(0, 0, 7)
	}
	return t
}

// Midnight 归一化到当天零点，比较日期时去掉时刻影响
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsExpired 严格早于 asOf 当天才算过期（到期日当天不算）
func IsExpired(d, asOf time.Time) bool {
	return Midnight(d).Before(Midnight(asOf))
}

// DaysUntil 距离 d 还有几天，过期为负
func DaysUntil(d, asOf time.Time) int {
	diff := Midnight(d).Sub(Midnight(asOf))
	return int(diff.Hours() / 24)
}
