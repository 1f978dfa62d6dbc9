// Package match suggests the closest known column name for a name that did
// not resolve, using edit distance over case-folded names.
package match
