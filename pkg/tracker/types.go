package tracker

import "github.com/ogulcanaydogan/settings-bill/pkg/model"

// Re-export types from model package for convenience.
type (
	Settings   = model.Settings
	Action     = model.Action
	ActionType = model.ActionType
	Totals     = model.Totals
	Level      = model.Level
)

// Re-export constants.
const (
	ActionCall = model.ActionCall
	ActionSMS  = model.ActionSMS

	LevelNormal   = model.LevelNormal
	LevelWarning  = model.LevelWarning
	LevelCritical = model.LevelCritical
)

var (
	// UnsetSettings wraps model.UnsetSettings.
	UnsetSettings = model.UnsetSettings
	// FormatAmount wraps model.FormatAmount.
	FormatAmount = model.FormatAmount
)
