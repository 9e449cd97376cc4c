package keyboard

// Keys holds the keyboard shortcuts of kdesk's interactive pickers
type Keys struct {
	Select string // Confirm the highlighted item
	Back   string // Clear the filter, or cancel when there is none
	Quit   string // Cancel immediately
	Filter string // Start filtering
}

// Default returns the default keyboard configuration
func Default() *Keys {
	return &Keys{
		Select: "enter",
		Back:   "esc",
		Quit:   "ctrl+c",
		Filter: "/",
	}
}

// GetKeys returns the current keyboard configuration
func GetKeys() *Keys {
	return Default()
}
