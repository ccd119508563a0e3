package tracker

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// SettingsBill tallies calls and SMS messages against configurable unit
// costs and warning/critical thresholds.
//
// It carries two independent ledgers. The action log keeps every recorded
// action and derives its totals on demand; the accumulator (see
// accumulator.go) keeps two running sums with its own rates and no history.
//
// SettingsBill does no locking. Callers that share an instance between
// goroutines must serialise access.
type SettingsBill struct {
	accumulator

	settings Settings
	actions  []Action
	now      func() time.Time
}

// Option configures a SettingsBill.
type Option func(*SettingsBill)

// WithClock overrides the clock used to timestamp actions.
func WithClock(now func() time.Time) Option {
	return func(b *SettingsBill) { b.now = now }
}

// New creates a SettingsBill with unset settings and an empty action log.
func New(opts ...Option) *SettingsBill {
	b := &SettingsBill{
		settings: UnsetSettings(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetSettings replaces all four settings at once.
func (b *SettingsBill) SetSettings(s Settings) {
	b.settings = s
}

// Settings returns a copy of the current settings.
func (b *SettingsBill) Settings() Settings {
	return b.settings
}

// RecordAction appends an action costed at the current settings. Once the
// grand total has reached the critical level the action is dropped and ok
// is false. Unknown action types are recorded at zero cost.
func (b *SettingsBill) RecordAction(actionType ActionType) (action Action, ok bool) {
	if b.HasReachedCriticalLevel() {
		return Action{}, false
	}

	action = Action{
		ID:        uuid.New().String(),
		Type:      actionType,
		Cost:      b.costOf(actionType),
		Timestamp: b.now(),
	}
	b.actions = append(b.actions, action)
	return action, true
}

// Actions returns the action log in insertion order.
func (b *SettingsBill) Actions() []Action {
	return slices.Clone(b.actions)
}

// ActionsFor returns the actions of the given type in insertion order.
func (b *SettingsBill) ActionsFor(actionType ActionType) []Action {
	filtered := []Action{}
	for _, a := range b.actions {
		if a.Type == actionType {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// Totals returns the SMS, call and grand totals formatted for display.
// Each field is rounded on its own from the unrounded sums, so the grand
// total may differ by a cent from the sum of the other two.
func (b *SettingsBill) Totals() Totals {
	return Totals{
		SmsTotal:   FormatAmount(b.total(ActionSMS)),
		CallTotal:  FormatAmount(b.total(ActionCall)),
		GrandTotal: FormatAmount(b.grandTotal()),
	}
}

// GrandTotal returns the unrounded sum of all call and SMS costs.
func (b *SettingsBill) GrandTotal() float64 {
	return b.grandTotal()
}

// HasReachedWarningLevel reports whether the grand total is at or above the
// warning level and still below the critical level.
func (b *SettingsBill) HasReachedWarningLevel() bool {
	total := b.grandTotal()
	return total >= b.settings.WarningLevel && total < b.settings.CriticalLevel
}

// HasReachedCriticalLevel reports whether the grand total is at or above the
// critical level.
func (b *SettingsBill) HasReachedCriticalLevel() bool {
	return b.grandTotal() >= b.settings.CriticalLevel
}

// Level classifies the grand total for display.
func (b *SettingsBill) Level() Level {
	switch {
	case b.HasReachedCriticalLevel():
		return LevelCritical
	case b.HasReachedWarningLevel():
		return LevelWarning
	default:
		return LevelNormal
	}
}

// Reset empties the action log. Settings and the accumulator are kept.
func (b *SettingsBill) Reset() {
	b.actions = nil
}

func (b *SettingsBill) costOf(actionType ActionType) float64 {
	switch actionType {
	case ActionSMS:
		return b.settings.SmsCost
	case ActionCall:
		return b.settings.CallCost
	default:
		return 0
	}
}

func (b *SettingsBill) total(actionType ActionType) float64 {
	var total float64
	for _, a := range b.actions {
		if a.Type == actionType {
			total += a.Cost
		}
	}
	return total
}

func (b *SettingsBill) grandTotal() float64 {
	return b.total(ActionSMS) + b.total(ActionCall)
}
