package editor

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Formula editor

Formulas start with ` + "`= `" + ` and mix numbers, operators and variables.

## Typing

| Key | Action |
|-----|--------|
| letters | search variables by the word being typed |
| ↑ / ↓ | move through suggestions |
| enter / tab | insert the highlighted variable |
| esc | close suggestions and edit chips |

## Chips

| Key | Action |
|-----|--------|
| ← / → | select a chip |
| x / backspace / delete | remove the selected chip |
| enter / i | return to the input |

## Operators

` + "`+ - * / % ^`" + ` and parentheses. ` + "`^`" + ` is exponentiation.

Removing a chip also removes the operator left dangling before it.

Press **?** or **esc** to close this help.
`

// renderHelp renders the key reference with glamour, falling back to the
// raw markdown if the renderer cannot be built.
func renderHelp(style string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
