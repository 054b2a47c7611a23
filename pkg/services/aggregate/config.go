package aggregate

import (
	"fmt"
	"strings"
)

// HealthMatch controls how the health note is compared to the sentinel.
type HealthMatch string

const (
	HealthMatchExact   HealthMatch = "exact"
	HealthMatchTrimmed HealthMatch = "trimmed"
)

func ParseHealthMatch(s string) (HealthMatch, error) {
	switch HealthMatch(strings.ToLower(strings.TrimSpace(s))) {
	case "", HealthMatchExact:
		return HealthMatchExact, nil
	case HealthMatchTrimmed:
		return HealthMatchTrimmed, nil
	}
	return HealthMatchExact, fmt.Errorf("unknown health match mode %q", s)
}

type Columns struct {
	Horse        string
	Rating       string
	Duration     string
	Health       string
	TrainingType string
	Attachment   string
}

type Config struct {
	Columns         Columns
	HealthySentinel string
	HealthMatch     HealthMatch
	UnspecifiedType string
}

func DefaultConfig() Config {
	return Config{
		Columns: Columns{
			Horse:        "اسم الخيل",
			Rating:       "تقييم نشاط واستجابة الخيل",
			Duration:     "مدة الحصة التدريبية بالدقيقة",
			Health:       "ملاحظات صحية",
			TrainingType: "نوع التدريب اليومي",
			Attachment:   "يمكنك رفع صور او فيدو للتوثيق",
		},
		HealthySentinel: "الخيل سليم تماماً",
		HealthMatch:     HealthMatchExact,
		UnspecifiedType: "غير محدد",
	}
}
