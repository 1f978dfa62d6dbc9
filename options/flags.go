package options

import "strings"

// FlagEnum selects how a nested schema is exposed as a table.
type FlagEnum int

const (
	FlagExpandArrays  FlagEnum = 1 << iota // bounded arrays become indexed columns: items_0, items_1, ...
	FlagExpandStructs                      // nested structs are flattened into parent_child columns

	FlagAll  FlagEnum = (1 << iota) - 1 // all flags combined
	FlagNone FlagEnum = 0               // nested schema is exposed as is
)

// Has reports whether every flag in other is set.
func (f FlagEnum) Has(other FlagEnum) bool {
	return f&other == other
}

// With returns f with other set or cleared.
func (f FlagEnum) With(other FlagEnum, on bool) FlagEnum {
	if on {
		return f | other
	}

	return f &^ other
}

// String returns a human-readable list of the set flags.
func (f FlagEnum) String() string {
	if f == FlagNone {
		return "none"
	}

	var parts []string
	if f.Has(FlagExpandArrays) {
		parts = append(parts, "expandArrays")
	}

	if f.Has(FlagExpandStructs) {
		parts = append(parts, "expandStructs")
	}

	return strings.Join(parts, "|")
}
