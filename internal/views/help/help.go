// Package help renders the keybinding help overlay.
package help

import (
	"github.com/amaranth494/MUDPuppy/internal/theme"
	"github.com/charmbracelet/glamour"
)

const content = `# MUDPuppy

A terminal client for the MUDPuppy gateway.

## Keys

| Key | Action |
|-----|--------|
| ctrl+o | open the quick-connect form |
| ctrl+d | disconnect from the current server |
| ctrl+g | toggle this help |
| pgup / pgdn | scroll the output |
| esc | close any overlay |
| ctrl+c | quit |

Everything else you type goes into the command line; enter sends it to the
MUD. An empty line sends a bare carriage return, which many MUDs expect.
`

// Render produces the help overlay for the given width. Rendering failures
// fall back to the raw markdown.
func Render(width int) string {
	if width < 30 {
		width = 30
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-6),
	)
	if err != nil {
		return theme.StyleModal.Render(content)
	}
	out, err := r.Render(content)
	if err != nil {
		return theme.StyleModal.Render(content)
	}
	return theme.StyleModal.Render(out)
}
