// Package types holds the raw Mach-O constant tables: magic values, CPU
// types and subtypes, file types, header flags, load command identifiers,
// section flags, nlist type bits and VM protections, together with their
// symbolic names.
package types

import "fmt"

// An IntName couples a constant value with its canonical name.
type IntName struct {
	I uint32
	S string
}

// StringName resolves i against names, falling back to a hex rendering so
// lookups over unknown values never fail.
func StringName(i uint32, names []IntName, goSyntax bool) string {
	for _, n := range names {
		if n.I == i {
			if goSyntax {
				return "types." + n.S
			}
			return n.S
		}
	}
	return fmt.Sprintf("%#x", i)
}
