package completion

import "testing"

func TestEditDistanceStandardExactMatch(t *testing.T) {
	d, ok := EditDistance("hello", "hello", AlgorithmStandard, 2)
	if !ok || d != 0 {
		t.Fatalf("want (0,true), got (%d,%v)", d, ok)
	}
}

func TestEditDistanceStandardSingleSubstitution(t *testing.T) {
	d, ok := EditDistance("cat", "cot", AlgorithmStandard, 2)
	if !ok || d != 1 {
		t.Fatalf("want (1,true), got (%d,%v)", d, ok)
	}
}

func TestEditDistanceExceedingMaxDistanceReturnsFalse(t *testing.T) {
	_, ok := EditDistance("abc", "xyz", AlgorithmStandard, 1)
	if ok {
		t.Fatal("distance of 3 should not satisfy maxDistance of 1")
	}
}

func TestEditDistanceTranspositionCountsAdjacentSwapAsOneEdit(t *testing.T) {
	standard, _ := EditDistance("ab", "ba", AlgorithmStandard, 2)
	transposed, ok := EditDistance("ab", "ba", AlgorithmTransposition, 2)
	if !ok || transposed != 1 {
		t.Fatalf("want (1,true), got (%d,%v)", transposed, ok)
	}
	if standard <= transposed {
		t.Fatalf("transposition should be cheaper than standard: standard=%d transposed=%d", standard, transposed)
	}
}

func TestEditDistanceMergeSplitCountsMergeAsOneEdit(t *testing.T) {
	// "contract" typo'd with a doubled letter collapsing to one target char.
	d, ok := EditDistance("conttract", "contract", AlgorithmMergeSplit, 2)
	if !ok || d != 1 {
		t.Fatalf("want (1,true), got (%d,%v)", d, ok)
	}
}

func TestEditDistanceEmptyStrings(t *testing.T) {
	d, ok := EditDistance("", "", AlgorithmStandard, 0)
	if !ok || d != 0 {
		t.Fatalf("want (0,true), got (%d,%v)", d, ok)
	}
}
