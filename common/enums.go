// Package common keeps enumerations shared between configuration, persisted
// preview settings and rendering.
package common

// Horizontal placement of the preview inside its container.
// ENUM(left, center, right)
type Alignment string

// Justify returns flexbox justify-content value for alignment.
func (a Alignment) Justify() string {
	switch a {
	case AlignmentLeft:
		return "flex-start"
	case AlignmentRight:
		return "flex-end"
	default:
		return "center"
	}
}

// Per block override of "Open" control visibility.
// ENUM(default, shown, hidden)
type ButtonDisplay int

// Visible resolves override against global default.
func (b ButtonDisplay) Visible(def bool) bool {
	switch b {
	case ButtonDisplayShown:
		return true
	case ButtonDisplayHidden:
		return false
	default:
		return def
	}
}
