package common

import (
	"strconv"
	"strings"
)

// UnknownStr is the String() result of enum values outside their range.
const UnknownStr = "unknown"

// Delimiter joins the segments of a flattened column name.
const Delimiter = "_"

// JoinName appends a segment to a column name prefix. An empty prefix yields the segment itself.
func JoinName(prefix, segment string) string {
	if prefix == "" {
		return segment
	}

	return prefix + Delimiter + segment
}

// JoinIndex appends an array index segment to a column name prefix.
func JoinIndex(prefix string, index int) string {
	return JoinName(prefix, strconv.Itoa(index))
}

// SplitName splits a column name into its segments.
func SplitName(name string) []string {
	if name == "" {
		return nil
	}

	return strings.Split(name, Delimiter)
}
