package weather

import (
	"strings"
	"time"
)

// MaxForecastHours is the longest forecast horizon the provider serves.
const MaxForecastHours = 240

var penalties = map[Category]int{
	CategoryClear:     0,
	CategoryLightRain: 5,
	CategoryHeavyRain: 12,
	CategorySnowOrIce: 18,
	CategorySevere:    25,
}

// Penalty returns the extra minutes for a category label.
// Unknown labels cost nothing.
func Penalty(label string) int {
	return penalties[Category(label)]
}

// AssessManual maps a caller-chosen label. Unknown labels are passed through
// unchanged with a zero penalty.
func AssessManual(label string) Assessment {
	return Assessment{ExtraMinutes: Penalty(label), Summary: label}
}

// AssessSample classifies a forecast sample. Free text wins when present.
func AssessSample(s HourlySample) Assessment {
	var c Category
	if strings.TrimSpace(s.ConditionText) != "" {
		c = ClassifyText(s.ConditionText)
	} else {
		c = ClassifyPrecipitation(s.PrecipitationType, s.PrecipitationPercent)
	}
	return Assessment{ExtraMinutes: penalties[c], Summary: string(c)}
}

// ClassifyText classifies a free-text condition by keyword.
func ClassifyText(text string) Category {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "snow", "ice", "sleet", "freezing"):
		return CategorySnowOrIce
	case containsAny(t, "thunder", "storm", "severe"):
		return CategorySevere
	case strings.Contains(t, "heavy") && strings.Contains(t, "rain"):
		return CategoryHeavyRain
	case containsAny(t, "rain", "drizzle"):
		return CategoryLightRain
	default:
		return CategoryClear
	}
}

// ClassifyPrecipitation classifies by precipitation type and probability.
func ClassifyPrecipitation(precipType string, percent int) Category {
	if percent < 20 {
		return CategoryClear
	}
	t := strings.ToUpper(precipType)
	switch {
	case containsAny(t, "SNOW", "SLEET", "FREEZING"):
		return CategorySnowOrIce
	case strings.Contains(t, "HEAVY_RAIN"):
		return CategoryHeavyRain
	case strings.Contains(t, "RAIN"):
		return CategoryLightRain
	case percent >= 70:
		return CategorySevere
	default:
		return CategoryLightRain
	}
}

// HourOffset is the index of the forecast hour covering deadline, counted in
// whole hours from now and clamped to [0, MaxForecastHours-1].
func HourOffset(now, deadline time.Time) int {
	h := int(deadline.Sub(now) / time.Hour)
	if h < 0 {
		return 0
	}
	if h > MaxForecastHours-1 {
		return MaxForecastHours - 1
	}
	return h
}

// HoursToFetch is how many samples are needed to reach offset.
func HoursToFetch(offset int) int {
	return min(MaxForecastHours, max(1, offset+1))
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
