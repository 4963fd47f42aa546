package catalog

import (
	"fmt"
	"strings"
)

// joinSections renders sections as one text blob with a "--- <label> i ---"
// marker before each section.
func joinSections(label string, sections []string) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- %s %d ---\n", label, i+1)
		if s != "" {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	return b.String()
}
