package tracker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ogulcanaydogan/settings-bill/pkg/tracker"
)

func TestAccumulator_Defaults(t *testing.T) {
	b := tracker.New()

	assert.Equal(t, 0.0, b.CallCost())
	assert.Equal(t, 0.0, b.SmsCost())
	assert.Equal(t, 0.0, b.WarningLevel())
	assert.Equal(t, 0.0, b.CriticalLevel())
	assert.Equal(t, 0.0, b.TotalCost())
}

func TestAccumulator_SetValues(t *testing.T) {
	tests := []struct {
		name          string
		callCost      float64
		smsCost       float64
		warningLevel  float64
		criticalLevel float64
	}{
		{name: "call cost", callCost: 1.85, criticalLevel: 10},
		{name: "sms cost", smsCost: 0.85},
		{name: "call and sms cost", callCost: 3.85, smsCost: 2.85},
		{name: "warning level", warningLevel: 30},
		{name: "warning and critical level", warningLevel: 50, criticalLevel: 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tracker.New()
			b.SetCallCost(tt.callCost)
			b.SetSmsCost(tt.smsCost)
			b.SetWarningLevel(tt.warningLevel)
			b.SetCriticalLevel(tt.criticalLevel)

			assert.Equal(t, tt.callCost, b.CallCost())
			assert.Equal(t, tt.smsCost, b.SmsCost())
			assert.Equal(t, tt.warningLevel, b.WarningLevel())
			assert.Equal(t, tt.criticalLevel, b.CriticalLevel())
		})
	}
}

func TestAccumulator_UseValues(t *testing.T) {
	tests := []struct {
		name      string
		callCost  float64
		calls     int
		sms       int
		wantTotal float64
		wantCall  float64
		wantSms   float64
	}{
		{name: "three calls at 2.25", callCost: 2.25, calls: 3, wantTotal: 6.75, wantCall: 6.75},
		{name: "two calls at 1.35", callCost: 1.35, calls: 2, wantTotal: 2.70, wantCall: 2.70},
		{name: "two sms at 0.85", callCost: 1.35, sms: 2, wantTotal: 1.70, wantSms: 1.70},
		{name: "one call and two sms", callCost: 1.35, calls: 1, sms: 2, wantTotal: 3.05, wantCall: 1.35, wantSms: 1.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tracker.New()
			b.SetCriticalLevel(10)
			b.SetCallCost(tt.callCost)
			b.SetSmsCost(0.85)

			for i := 0; i < tt.calls; i++ {
				b.MakeCall()
			}
			for i := 0; i < tt.sms; i++ {
				b.SendSms()
			}

			assert.InDelta(t, tt.wantTotal, b.TotalCost(), 1e-9)
			assert.InDelta(t, tt.wantCall, b.TotalCallCost(), 1e-9)
			assert.InDelta(t, tt.wantSms, b.TotalSmsCost(), 1e-9)
		})
	}
}

func TestAccumulator_WarningClassName(t *testing.T) {
	b := tracker.New()
	b.SetCallCost(1.35)
	b.SetSmsCost(0.85)
	b.SetWarningLevel(5)
	b.SetCriticalLevel(10)

	for i := 0; i < 4; i++ {
		b.MakeCall()
	}
	assert.Equal(t, "warning", b.TotalClassName())
}

func TestAccumulator_NoClassNameBelowWarning(t *testing.T) {
	b := tracker.New()
	b.SetCallCost(1.35)
	b.SetWarningLevel(5)
	b.SetCriticalLevel(10)

	b.MakeCall()
	assert.Equal(t, "", b.TotalClassName())
}

func TestAccumulator_CriticalWithDefaultLevel(t *testing.T) {
	b := tracker.New()
	b.SetCallCost(2.50)
	b.SetSmsCost(0.85)
	b.SetWarningLevel(10)

	for i := 0; i < 4; i++ {
		b.MakeCall()
	}

	// The critical level defaults to zero, so the total is clamped from the start.
	assert.Equal(t, "critical", b.TotalClassName())
	assert.Equal(t, 0.0, b.TotalCallCost())
}

func TestAccumulator_ClampAtCritical(t *testing.T) {
	b := tracker.New()
	b.SetCallCost(2.50)
	b.SetSmsCost(0.85)
	b.SetCriticalLevel(10)

	for i := 0; i < 5; i++ {
		b.MakeCall()
	}
	b.SendSms()

	assert.Equal(t, "critical", b.TotalClassName())
	assert.Equal(t, 10.0, b.TotalCallCost())
	assert.Equal(t, 0.0, b.TotalSmsCost())
}

func TestAccumulator_RaiseCriticalAfterClamp(t *testing.T) {
	b := tracker.New()
	b.SetCallCost(2.50)
	b.SetSmsCost(0.85)
	b.SetWarningLevel(10)
	b.SetCriticalLevel(10)

	for i := 0; i < 5; i++ {
		b.MakeCall()
	}
	assert.Equal(t, "critical", b.TotalClassName())
	assert.Equal(t, 10.0, b.TotalCallCost())

	b.SetCriticalLevel(20)
	assert.Equal(t, "warning", b.TotalClassName())
	assert.Equal(t, 10.0, b.TotalCallCost(), "suppressed calls are not added back")

	b.MakeCall()
	b.MakeCall()
	assert.Equal(t, 15.0, b.TotalCallCost())
}

func TestAccumulator_RaiseCriticalBackToNormal(t *testing.T) {
	b := tracker.New()
	b.SetCallCost(2.50)
	b.SetWarningLevel(15)
	b.SetCriticalLevel(10)

	for i := 0; i < 5; i++ {
		b.MakeCall()
	}
	assert.Equal(t, "critical", b.TotalClassName())

	b.SetCriticalLevel(20)
	assert.Equal(t, "", b.TotalClassName())
}

func TestAccumulator_IndependentOfActionLog(t *testing.T) {
	b := tracker.New()
	b.SetSettings(tracker.Settings{SmsCost: 1, CallCost: 1, WarningLevel: 1, CriticalLevel: 2})
	b.SetCallCost(3)
	b.SetCriticalLevel(100)

	b.RecordAction(tracker.ActionCall)
	b.RecordAction(tracker.ActionCall)
	assert.True(t, b.HasReachedCriticalLevel())
	assert.Equal(t, 0.0, b.TotalCost())

	b.MakeCall()
	assert.Equal(t, 3.0, b.TotalCallCost(), "the action log clamp does not stop the accumulator")
	assert.Len(t, b.Actions(), 2)
}
