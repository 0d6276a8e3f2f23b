package util

import (
	"encoding/json"
	"math"
	"time"
)

// ToInt 将 JSON 解码出来的任意数值转换为 int，无法转换或超出 [-MaxTrainingMinutes, MaxTrainingMinutes] 时返回 false
func ToInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return boundedInt(float64(n))
	case int32:
		return int(n), true
	case int64:
		return boundedInt(float64(n))
	case float32:
		return boundedInt(float64(n))
	case float64:
		return boundedInt(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return boundedInt(f)
	}
	return 0, false
}

func boundedInt(f float64) (int, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	r := math.Round(f)
	if r > MaxTrainingMinutes || r < -MaxTrainingMinutes {
		return 0, false
	}
	return int(r), true
}

// AddMinutes 累加学习时长，结果封顶为 MaxTrainingMinutes
func AddMinutes(total, minutes int) int {
	if minutes <= 0 {
		return total
	}
	if total > MaxTrainingMinutes-minutes {
		return MaxTrainingMinutes
	}
	return total + minutes
}

// FormatISO 时间统一输出为 UTC 的 ISO-8601，nil 返回 nil
func FormatISO(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func ISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
