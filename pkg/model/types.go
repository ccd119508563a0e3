package model

import (
	"encoding/json"
	"math"
	"time"
)

// ActionType names a billable event. Any string is accepted; only
// ActionCall and ActionSMS carry a cost.
type ActionType string

const (
	ActionCall ActionType = "call"
	ActionSMS  ActionType = "sms"
)

// Level classifies a grand total against the warning and critical thresholds.
type Level string

const (
	LevelNormal   Level = ""
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Rank orders levels: 0 normal, 1 warning, 2 critical.
func (l Level) Rank() int {
	switch l {
	case LevelCritical:
		return 2
	case LevelWarning:
		return 1
	default:
		return 0
	}
}

// Settings holds the unit costs and thresholds of the action log.
// Unset fields are NaN.
type Settings struct {
	CallCost      float64 `json:"callCost" yaml:"call_cost"`
	SmsCost       float64 `json:"smsCost" yaml:"sms_cost"`
	WarningLevel  float64 `json:"warningLevel" yaml:"warning_level"`
	CriticalLevel float64 `json:"criticalLevel" yaml:"critical_level"`
}

// UnsetSettings returns settings with every field unset.
func UnsetSettings() Settings {
	nan := math.NaN()
	return Settings{CallCost: nan, SmsCost: nan, WarningLevel: nan, CriticalLevel: nan}
}

// MarshalJSON renders NaN fields as null.
func (s Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]*float64{
		"callCost":      finite(s.CallCost),
		"smsCost":       finite(s.SmsCost),
		"warningLevel":  finite(s.WarningLevel),
		"criticalLevel": finite(s.CriticalLevel),
	})
}

// Action is one recorded call or SMS with the cost in force when it was recorded.
type Action struct {
	ID        string     `json:"id"`
	Type      ActionType `json:"type"`
	Cost      float64    `json:"cost"`
	Timestamp time.Time  `json:"timestamp"`
}

// MarshalJSON renders a NaN cost as null.
func (a Action) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID        string     `json:"id"`
		Type      ActionType `json:"type"`
		Cost      *float64   `json:"cost"`
		Timestamp time.Time  `json:"timestamp"`
	}
	return json.Marshal(wire{ID: a.ID, Type: a.Type, Cost: finite(a.Cost), Timestamp: a.Timestamp})
}

// Totals are the display totals of the action log, two fraction digits each.
type Totals struct {
	SmsTotal   string `json:"smsTotal"`
	CallTotal  string `json:"callTotal"`
	GrandTotal string `json:"grandTotal"`
}

// ActionFilter selects journal entries.
type ActionFilter struct {
	Type      ActionType `json:"type,omitempty"`
	StartTime time.Time  `json:"start_time,omitempty"`
	EndTime   time.Time  `json:"end_time,omitempty"`
	Limit     int        `json:"limit,omitempty"`
}

// JournalSummary holds aggregated journal statistics.
type JournalSummary struct {
	TotalCost   float64                `json:"total_cost"`
	ActionCount int64                  `json:"action_count"`
	ByType      map[ActionType]float64 `json:"by_type,omitempty"`
	CountByType map[ActionType]int64   `json:"count_by_type,omitempty"`
}

// Period is a reporting window.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// PeriodBounds returns the start and end time for the current period.
func PeriodBounds(period Period) (start, end time.Time) {
	now := time.Now().UTC()
	switch period {
	case PeriodDaily:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
	case PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day()-weekday+1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	default:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
	}
	return start, end
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
