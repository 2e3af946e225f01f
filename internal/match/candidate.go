package match

import (
	"sort"
)

// Candidate is a known name scored against a name that did not resolve.
type Candidate struct {
	Name  string
	Score float64 // normalized similarity, 0-1

	Normalized string
}

// CandidateList is a list of candidates ranked by score.
type CandidateList []Candidate

// Rank scores every name in names against target and returns them best
// first. Qualified names ("pkg.Type") are also compared by their last
// segment, and the better of both scores is kept.
func Rank(target string, names []string) CandidateList {
	candidates := make(CandidateList, 0, len(names))

	targetNorm := NormalizeIdent(target)
	targetLast := NormalizeIdent(LastSegment(target))

	for _, name := range names {
		norm := NormalizeIdent(name)

		score := Similarity(norm, targetNorm)
		if last := Similarity(NormalizeIdent(LastSegment(name)), targetLast); last > score {
			score = last
		}

		candidates = append(candidates, Candidate{
			Name:       name,
			Score:      score,
			Normalized: norm,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns up to limit names from names that look like target, best
// first. Names scoring below DefaultSuggestThreshold are left out.
func Suggest(target string, names []string, limit int) []string {
	ranked := Rank(target, names).AboveThreshold(DefaultSuggestThreshold).Top(limit)

	out := make([]string, 0, len(ranked))
	for _, c := range ranked {
		if c.Name == target {
			continue
		}

		out = append(out, c.Name)
	}

	return out
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface: score descending, then name.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n < 0 || n >= len(c) {
		return c
	}

	return c[:n]
}

// AboveThreshold returns the candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// DefaultSuggestThreshold is the minimum score for a "did you mean" hint.
const DefaultSuggestThreshold = 0.5
