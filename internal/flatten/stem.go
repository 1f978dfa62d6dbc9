package flatten

import "strconv"

// reserve returns name, or name followed by the lowest free numeric suffix
// when name is taken, and marks the result as taken.
func reserve(name string, taken map[string]struct{}) (string, bool) {
	candidate := name

	for n := 1; ; n++ {
		if _, ok := taken[candidate]; !ok {
			taken[candidate] = struct{}{}
			return candidate, candidate == name
		}

		candidate = name + strconv.Itoa(n)
	}
}
