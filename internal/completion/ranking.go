package completion

import "sort"

// CompletionSymbol is one ranking candidate: the dictionary metadata plus
// the two contextual measurements only a caller holding the request's
// scope chain and query string can supply. ScopeDepth is left at the
// caller's discretion (e.g. distance from the request position's
// innermost scope to the declaration's scope, per `symtab.Scope.ScopeAt`)
// and Distance comes from Dictionary.QueryFuzzy, or zero for a prefix
// match.
type CompletionSymbol struct {
	Metadata   SymbolMetadata
	Distance   int
	ScopeDepth int
}

// RankingCriteria weights the four signals the composite score combines:
// how close a candidate's declaration is in scope, how far its name is
// from the query, how often it's referenced, and how long its name is.
// Grounded on `original_source/src/lsp/features/completion/ranking.rs`'s
// RankingCriteria and its three presets below.
type RankingCriteria struct {
	ScopeDepthWeight     float64
	DistanceWeight       float64
	ReferenceCountWeight float64
	LengthWeight         float64
	MaxResults           int
}

// DefaultCriteria favors nearby scope over anything else, matching
// ranking.rs's RankingCriteria::default().
func DefaultCriteria() RankingCriteria {
	return RankingCriteria{
		ScopeDepthWeight:     10.0,
		DistanceWeight:       1.0,
		ReferenceCountWeight: 0.1,
		LengthWeight:         0.01,
		MaxResults:           50,
	}
}

// ExactPrefixCriteria drops edit distance from the score entirely (every
// prefix match is equally "close"), weighting reference count and name
// length instead, per ranking.rs's RankingCriteria::exact_prefix().
func ExactPrefixCriteria() RankingCriteria {
	return RankingCriteria{
		ScopeDepthWeight:     10.0,
		DistanceWeight:       0.0,
		ReferenceCountWeight: 0.5,
		LengthWeight:         0.5,
		MaxResults:           50,
	}
}

// FuzzyCriteria weighs edit distance twice as heavily as DefaultCriteria,
// per ranking.rs's RankingCriteria::fuzzy().
func FuzzyCriteria() RankingCriteria {
	return RankingCriteria{
		ScopeDepthWeight:     10.0,
		DistanceWeight:       2.0,
		ReferenceCountWeight: 0.1,
		LengthWeight:         0.01,
		MaxResults:           50,
	}
}

// score computes a candidate's composite rank: lower is better, since
// scope depth and edit distance are both penalties, while a higher
// reference count or shorter name should pull the score down.
func score(s CompletionSymbol, c RankingCriteria) float64 {
	return float64(s.ScopeDepth)*c.ScopeDepthWeight +
		float64(s.Distance)*c.DistanceWeight -
		float64(s.Metadata.ReferenceCount)*c.ReferenceCountWeight +
		float64(len(s.Metadata.Name))*c.LengthWeight
}

// RankCompletions sorts symbols by ascending composite score, breaking
// ties lexicographically by name, and truncates to criteria.MaxResults.
func RankCompletions(symbols []CompletionSymbol, criteria RankingCriteria) []CompletionSymbol {
	ranked := make([]CompletionSymbol, len(symbols))
	copy(ranked, symbols)

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := score(ranked[i], criteria), score(ranked[j], criteria)
		if si != sj {
			return si < sj
		}
		return ranked[i].Metadata.Name < ranked[j].Metadata.Name
	})

	if criteria.MaxResults > 0 && len(ranked) > criteria.MaxResults {
		ranked = ranked[:criteria.MaxResults]
	}
	return ranked
}
