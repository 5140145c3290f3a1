package catalog

import (
	"bytes"
	"encoding/json"
)

// Choices returns the two-valued domain of a flag with its default first.
func (f Flag) Choices() []string {
	if f.Default {
		return []string{"yes", "no"}
	}
	return []string{"no", "yes"}
}

// Manifest renders the root manifest: every string answer with its default,
// every flag with its domain, and the copy-without-render globs. Keys keep
// catalog order.
func (c *Catalog) Manifest() string {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	var keys []string
	var values []any
	for _, a := range c.Answers {
		keys = append(keys, a.Name)
		values = append(values, a.Default)
	}
	for _, f := range c.Flags {
		keys = append(keys, f.Name)
		values = append(values, f.Choices())
	}
	keys = append(keys, "_copy_without_render")
	values = append(values, c.CopyWithoutRender)

	for i, k := range keys {
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(values[i])
		buf.WriteString("  ")
		buf.Write(kb)
		buf.WriteString(": ")
		buf.Write(vb)
		if i < len(keys)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}
