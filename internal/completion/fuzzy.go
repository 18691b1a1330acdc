package completion

// Algorithm selects which edit-distance variant EditDistance computes,
// mirroring the three algorithms the original implementation exposed
// through an external Levenshtein-automaton library
// (`liblevenshtein::prelude::Algorithm`, per
// `original_source/benches/completion_performance.rs`). No single
// Go library in the pack ships this exact closed algorithm set
// (`github.com/agnivade/levenshtein` only implements Standard), so all
// three are computed by one parameterized dynamic-programming table here;
// see DESIGN.md for the full justification.
type Algorithm int

const (
	// AlgorithmStandard allows insert, delete, and substitute.
	AlgorithmStandard Algorithm = iota
	// AlgorithmTransposition additionally allows swapping two adjacent
	// characters for one edit (Optimal String Alignment distance).
	AlgorithmTransposition
	// AlgorithmMergeSplit additionally allows merging two adjacent source
	// characters into one target character, or splitting one source
	// character into two target characters, each for one edit.
	AlgorithmMergeSplit
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmTransposition:
		return "Transposition"
	case AlgorithmMergeSplit:
		return "MergeSplit"
	default:
		return "Standard"
	}
}

// EditDistance computes the edit distance between a and b under algorithm,
// stopping early once every remaining cell is provably over maxDistance.
// The second return value is false when the true distance exceeds
// maxDistance, matching query_fuzzy's bounded-search contract: the caller
// only cares whether a candidate is within budget, not its exact distance
// beyond that point.
func EditDistance(a, b string, algorithm Algorithm, maxDistance int) (int, bool) {
	ar, br := []rune(a), []rune(b)
	n, m := len(ar), len(br)

	if abs(n-m) > maxDistance {
		return 0, false
	}

	// dp[i][j] is the edit distance between ar[:i] and br[:j].
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
		dp[i][0] = i
	}
	for j := 0; j <= m; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= n; i++ {
		rowMin := dp[i][0]
		for j := 1; j <= m; j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}

			best := dp[i-1][j] + 1 // delete
			if v := dp[i][j-1] + 1; v < best {
				best = v // insert
			}
			if v := dp[i-1][j-1] + cost; v < best {
				best = v // match/substitute
			}

			if algorithm == AlgorithmTransposition || algorithm == AlgorithmMergeSplit {
				if i > 1 && j > 1 && ar[i-1] == br[j-2] && ar[i-2] == br[j-1] {
					if v := dp[i-2][j-2] + 1; v < best {
						best = v // adjacent transposition
					}
				}
			}

			if algorithm == AlgorithmMergeSplit {
				if i > 1 {
					if v := dp[i-2][j-1] + 1; v < best {
						best = v // merge: two source chars collapse to one target char
					}
				}
				if j > 1 {
					if v := dp[i-1][j-2] + 1; v < best {
						best = v // split: one source char expands to two target chars
					}
				}
			}

			dp[i][j] = best
			if best < rowMin {
				rowMin = best
			}
		}
		if rowMin > maxDistance {
			return 0, false
		}
	}

	distance := dp[n][m]
	if distance > maxDistance {
		return 0, false
	}
	return distance, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
