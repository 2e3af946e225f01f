package match

// Distance returns the edit distance between two names counted in runes, so
// a misspelled non-ASCII identifier costs one edit per character.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	// row[i] holds the distance between ra[:i] and the prefix of rb seen so far.
	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j, cb := range rb {
		diag := row[0]
		row[0] = j + 1

		for i, ca := range ra {
			sub := diag
			if ca != cb {
				sub++
			}

			diag = row[i+1]
			row[i+1] = min(row[i+1]+1, row[i]+1, sub)
		}
	}

	return row[len(ra)]
}

// Similarity scores two names between 0 and 1 from their edit distance,
// relative to the longer one. Two empty names are identical.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Distance(a, b))/float64(longest)
}
