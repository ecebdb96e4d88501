package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
)

// Styles groups the styles used by the command-line output.
type Styles struct {
	Header      lipgloss.Style
	Placeholder lipgloss.Style
	Image       lipgloss.Style
	File        lipgloss.Style
	Path        lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
}

// New returns the styles for the named theme. "plain" disables all
// styling; any other name selects the default palette.
func New(name string) Styles {
	if name == "plain" {
		plain := lipgloss.NewStyle()
		return Styles{
			Header:      plain,
			Placeholder: plain,
			Image:       plain,
			File:        plain,
			Path:        plain,
			Warning:     plain,
			Error:       plain,
			Help:        plain,
		}
	}

	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 1),
		Placeholder: lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true),
		Image: lipgloss.NewStyle().Bold(true).Foreground(ColorMagenta),
		File:  lipgloss.NewStyle().Bold(true).Foreground(ColorBlue),
		Path:  lipgloss.NewStyle().Foreground(ColorGreen),
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorYellow),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed),
		Help: lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true),
	}
}

// Kind returns the style for an attachment kind label.
func (s Styles) Kind(isImage bool) lipgloss.Style {
	if isImage {
		return s.Image
	}
	return s.File
}
