package entity

import (
	"slices"
	"strings"
)

// DescribeOptions controls which parts of an entity enter a description dump.
type DescribeOptions struct {
	IncludeName      bool     // emit a leading "- name: ..." line
	IncludeInventory bool     // append the "- inventory: ..." summary line
	IncludeHidden    bool     // include "_"-prefixed invisible properties
	ExcludeKeys      []string // keys to leave out entirely
}

// Describe renders the property bag line-oriented, one "- key: value" line
// per included property, in bag order. With IncludeInventory the summary line
// reads "- inventory: a, b" or "- inventory: empty".
func (e *Entity) Describe(opts DescribeOptions) string {
	var sb strings.Builder

	writeLine := func(key, value string) {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + key + ": " + value)
	}

	if opts.IncludeName {
		writeLine(KeyName, e.name)
	}
	for _, k := range e.keys {
		if slices.Contains(opts.ExcludeKeys, k) {
			continue
		}
		if !opts.IncludeHidden && strings.HasPrefix(k, HiddenPrefix) {
			continue
		}
		writeLine(k, e.props[k].String())
	}

	if opts.IncludeInventory {
		if len(e.inventory) == 0 {
			writeLine("inventory", "empty")
		} else {
			writeLine("inventory", strings.Join(e.ItemNames(), ", "))
		}
	}

	return sb.String()
}
