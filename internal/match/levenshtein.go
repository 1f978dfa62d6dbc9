package match

// Distance returns the number of single-rune insertions, deletions and
// substitutions needed to turn a into b.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	// row[i] is the distance between ra[:i] and the prefix of rb seen so far
	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		diag := row[0]
		row[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			next := min(row[i]+1, row[i-1]+1, diag+cost)
			diag, row[i] = row[i], next
		}
	}

	return row[len(ra)]
}

// Similarity returns 1 for equal strings down to 0 for strings with nothing in common.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Distance(a, b))/float64(longest)
}
