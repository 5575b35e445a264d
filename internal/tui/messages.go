package tui

// overrideSavedMsg reports the outcome of persisting one override.
type overrideSavedMsg struct {
	err  error
	item string
}
