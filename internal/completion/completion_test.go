package completion

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDictionaryQueryPrefixMatchesCaseSensitively(t *testing.T) {
	d := NewDictionary()
	d.Insert("file:///a.rho", SymbolMetadata{Name: "deposit", Kind: "contract"})
	d.Insert("file:///a.rho", SymbolMetadata{Name: "depositAll", Kind: "contract"})
	d.Insert("file:///a.rho", SymbolMetadata{Name: "withdraw", Kind: "contract"})
	// Differs from "depo" only by case, so it must not match.
	d.Insert("file:///a.rho", SymbolMetadata{Name: "Deposit", Kind: "contract"})

	results := d.QueryPrefix("depo")
	if len(results) != 2 {
		t.Fatalf("want 2 matches, got %d", len(results))
	}
}

func TestDictionaryQueryPrefixNormalizesUnicode(t *testing.T) {
	d := NewDictionary()
	// Stored as NFC: e-acute is a single codepoint.
	d.Insert("file:///a.rho", SymbolMetadata{Name: "caf\u00e9"})

	// Queried as NFD: plain "e" followed by a combining acute accent (U+0301).
	results := d.QueryPrefix("cafe\u0301")
	if len(results) != 1 {
		t.Fatalf("want the NFD query to match the NFC-stored name, got %d", len(results))
	}
}

func TestDictionaryRemoveDocumentSymbolsRetractsOnlyThatURI(t *testing.T) {
	d := NewDictionary()
	d.Insert("file:///a.rho", SymbolMetadata{Name: "fromA"})
	d.Insert("file:///b.rho", SymbolMetadata{Name: "fromB"})

	d.RemoveDocumentSymbols("file:///a.rho")

	if len(d.QueryPrefix("fromA")) != 0 {
		t.Fatal("fromA should have been retracted")
	}
	if len(d.QueryPrefix("fromB")) != 1 {
		t.Fatal("fromB should still be present")
	}
}

func TestDictionaryReindexRetractsStaleNameBeforeReinsert(t *testing.T) {
	d := NewDictionary()
	d.Insert("file:///a.rho", SymbolMetadata{Name: "oldName"})
	d.RemoveDocumentSymbols("file:///a.rho")
	d.Insert("file:///a.rho", SymbolMetadata{Name: "newName"})

	if len(d.QueryPrefix("old")) != 0 {
		t.Fatal("oldName must not survive a re-index that renamed it")
	}
	if len(d.QueryPrefix("new")) != 1 {
		t.Fatal("newName must be queryable after the re-index")
	}
}

func TestDictionaryQueryFuzzyReturnsDistanceAnnotatedMatches(t *testing.T) {
	d := NewDictionary()
	d.Insert("file:///a.rho", SymbolMetadata{Name: "deposit"})

	results := d.QueryFuzzy("depsit", 2, AlgorithmStandard)
	if len(results) != 1 {
		t.Fatalf("want 1 fuzzy match, got %d", len(results))
	}
	if results[0].Distance != 1 {
		t.Fatalf("want distance 1, got %d", results[0].Distance)
	}
}

func TestDictionaryQueryFuzzyExcludesCandidatesBeyondMaxDistance(t *testing.T) {
	d := NewDictionary()
	d.Insert("file:///a.rho", SymbolMetadata{Name: "deposit"})

	results := d.QueryFuzzy("xyzxyz", 2, AlgorithmStandard)
	if len(results) != 0 {
		t.Fatalf("want 0 fuzzy matches, got %d", len(results))
	}
}

func TestDictionarySaveAndLoadRoundTrips(t *testing.T) {
	d := NewDictionary()
	d.Insert("file:///a.rho", SymbolMetadata{Name: "deposit", Kind: "contract", ReferenceCount: 3})
	d.Insert("file:///b.rho", SymbolMetadata{Name: "withdraw", Kind: "contract"})

	path := filepath.Join(t.TempDir(), "completion.gob")
	if err := d.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadDictionaryFromFile(path)
	if err != nil {
		t.Fatalf("LoadDictionaryFromFile: %v", err)
	}

	results := loaded.QueryPrefix("depo")
	if len(results) != 1 || results[0].ReferenceCount != 3 {
		t.Fatalf("round-tripped entry lost metadata: %+v", results)
	}
	if len(loaded.QueryPrefix("with")) != 1 {
		t.Fatal("second document's contribution did not round-trip")
	}
}

func TestLoadDictionaryFromFileMissingPath(t *testing.T) {
	_, err := LoadDictionaryFromFile(filepath.Join(os.TempDir(), "does-not-exist.gob"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
