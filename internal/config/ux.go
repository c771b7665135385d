package config

// UIConfig holds terminal editor configuration.
type UIConfig struct {
	// DarkMode forces the dark palette. When false the terminal is probed.
	DarkMode bool `json:"dark_mode" yaml:"dark_mode"`

	// MaxSuggestions caps the rows drawn in the suggestion panel (0 = no cap)
	MaxSuggestions int `json:"max_suggestions" yaml:"max_suggestions"`

	// Width is the editor box width in cells
	Width int `json:"width" yaml:"width"`

	// Mouse enables click handling (focus on click, dismiss on outside click)
	Mouse bool `json:"mouse" yaml:"mouse"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		DarkMode:       false,
		MaxSuggestions: 12,
		Width:          60,
		Mouse:          true,
	}
}
