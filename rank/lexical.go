package rank

import "unicode/utf8"

// minTokenSimilarity is the edit-distance similarity floor below which two
// tokens are treated as unrelated rather than noisy partial matches.
const minTokenSimilarity = 0.7

// tokenSimilarity returns a similarity in [0,1] between two tokens:
// 1 for equality, otherwise 1 - editDistance/maxLen, floored to 0 below
// minTokenSimilarity. Lengths and distances are measured in runes, matching
// the tokenizer.
func tokenSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0
	}
	sim := 1 - float64(editDistance(a, b))/float64(maxLen)
	if sim < minTokenSimilarity {
		return 0
	}
	return sim
}

// lexicalScore measures token-level overlap between the weighted query tokens
// and the descriptor tokens: the weighted mean of each query token's best
// match. queryTokens fixes the accumulation order, so equal inputs always sum
// in the same sequence. Result is normalized to [0,1].
func lexicalScore(queryTokens []string, queryWeights map[string]float64, docTokens []string) float64 {
	if len(queryTokens) == 0 || len(docTokens) == 0 {
		return 0
	}

	var sum, totalWeight float64
	for _, qtok := range queryTokens {
		w := queryWeights[qtok]
		best := 0.0
		for _, dtok := range docTokens {
			if sim := tokenSimilarity(qtok, dtok); sim > best {
				best = sim
				if best == 1 {
					break
				}
			}
		}
		sum += best * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return sum / totalWeight
}

// editDistance computes the Levenshtein distance between two tokens in runes
// using the two-row dynamic program.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
