package tui

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// OpenNewClientFormMsg tells the clients screen to open the new client form
type OpenNewClientFormMsg struct{}

// firstRunCheckMsg reports whether any client has been saved
type firstRunCheckMsg struct {
	hasClients bool
}

// actionDoneMsg reports the outcome of a one-shot action on a screen
type actionDoneMsg struct {
	status string
	err    error
}
