package tracker

// accumulator is the history-less ledger of a SettingsBill. Its rates start
// at zero and are independent of the action log settings.
//
// Once the running total reaches the critical level further calls and SMS
// messages are not added. Raising the critical level afterwards changes
// TotalClassName immediately but never adds back what was suppressed.
type accumulator struct {
	callCost      float64
	smsCost       float64
	warningLevel  float64
	criticalLevel float64

	callCostTotal float64
	smsCostTotal  float64
}

// SetCallCost sets the rate added by each later MakeCall.
func (a *accumulator) SetCallCost(cost float64) { a.callCost = cost }

// CallCost returns the current call rate.
func (a *accumulator) CallCost() float64 { return a.callCost }

// SetSmsCost sets the rate added by each later SendSms.
func (a *accumulator) SetSmsCost(cost float64) { a.smsCost = cost }

// SmsCost returns the current SMS rate.
func (a *accumulator) SmsCost() float64 { return a.smsCost }

// SetWarningLevel sets the warning threshold. It takes effect on the next
// TotalClassName.
func (a *accumulator) SetWarningLevel(level float64) { a.warningLevel = level }

// WarningLevel returns the warning threshold.
func (a *accumulator) WarningLevel() float64 { return a.warningLevel }

// SetCriticalLevel sets the critical threshold. Totals already suppressed
// by the old level are not restored.
func (a *accumulator) SetCriticalLevel(level float64) { a.criticalLevel = level }

// CriticalLevel returns the critical threshold.
func (a *accumulator) CriticalLevel() float64 { return a.criticalLevel }

// MakeCall adds one call at the current call cost unless clamped.
func (a *accumulator) MakeCall() {
	if !a.clamped() {
		a.callCostTotal += a.callCost
	}
}

// SendSms adds one SMS at the current SMS cost unless clamped.
func (a *accumulator) SendSms() {
	if !a.clamped() {
		a.smsCostTotal += a.smsCost
	}
}

// TotalCost returns the sum of both running totals.
func (a *accumulator) TotalCost() float64 {
	return a.callCostTotal + a.smsCostTotal
}

// TotalCallCost returns the running total of calls.
func (a *accumulator) TotalCallCost() float64 { return a.callCostTotal }

// TotalSmsCost returns the running total of SMS messages.
func (a *accumulator) TotalSmsCost() float64 { return a.smsCostTotal }

// TotalClassName returns "critical", "warning" or "" for the running total.
// The critical check wins when both thresholds are met.
func (a *accumulator) TotalClassName() string {
	total := a.TotalCost()
	if total >= a.criticalLevel {
		return string(LevelCritical)
	}
	if total >= a.warningLevel {
		return string(LevelWarning)
	}
	return string(LevelNormal)
}

func (a *accumulator) clamped() bool {
	return a.TotalCost() >= a.criticalLevel
}
