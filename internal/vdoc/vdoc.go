// Package vdoc detects embedded-language regions inside a polyglot host
// document (e.g. MeTTa source embedded in a Rholang string literal) and
// maps positions between a region's own coordinate space and the host
// document's (§4.10).
package vdoc

import (
	"sort"
	"strings"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
)

// SourceKind records which detector produced a Region, used to break ties
// when two detectors claim overlapping spans.
type SourceKind int

const (
	// CommentDirective regions come from a `// @lang` tag and dominate any
	// other detector claiming the same span.
	CommentDirective SourceKind = iota
	StringLiteral
	Grammar
)

func (k SourceKind) String() string {
	switch k {
	case CommentDirective:
		return "CommentDirective"
	case StringLiteral:
		return "StringLiteral"
	case Grammar:
		return "Grammar"
	default:
		return "Unknown"
	}
}

// Region is one embedded-language span detected inside a host document.
type Region struct {
	Language string
	Content  string
	Start    ir.Position
	End      ir.Position
	Source   SourceKind
}

func (r Region) spanKey() [2]uint32 { return [2]uint32{r.Start.Byte, r.End.Byte} }

// Detector inspects a document's source text and IR for embedded-language
// regions. Detectors are independent and blind to one another; the
// registry reconciles overlapping claims.
type Detector interface {
	Detect(source string, doc ir.DocumentIR) []Region
	Name() string
}

// DetectorRegistry runs every registered Detector and deduplicates their
// combined output.
type DetectorRegistry struct {
	detectors []Detector
}

// NewDetectorRegistry constructs an empty registry.
func NewDetectorRegistry() *DetectorRegistry {
	return &DetectorRegistry{}
}

// NewDetectorRegistryWithDefaults constructs a registry with the detectors
// every workspace needs: comment directives and channel-tagged string
// literals.
func NewDetectorRegistryWithDefaults() *DetectorRegistry {
	r := NewDetectorRegistry()
	r.Register(CommentDirectiveDetector{})
	r.Register(MettaChannelStringDetector{})
	return r
}

// Register adds d to the registry's detector list.
func (r *DetectorRegistry) Register(d Detector) {
	r.detectors = append(r.detectors, d)
}

// DetectAll runs every registered detector against source/doc and returns
// the deduplicated region set: when two detectors claim the exact same
// span, CommentDirective wins over every other source, matching §4.10's
// "CommentDirective dominates other sources for the same span".
func (r *DetectorRegistry) DetectAll(source string, doc ir.DocumentIR) []Region {
	bySpan := make(map[[2]uint32]Region)
	var order [][2]uint32

	for _, d := range r.detectors {
		for _, region := range d.Detect(source, doc) {
			key := region.spanKey()
			existing, found := bySpan[key]
			if !found {
				bySpan[key] = region
				order = append(order, key)
				continue
			}
			if region.Source == CommentDirective && existing.Source != CommentDirective {
				bySpan[key] = region
			}
		}
	}

	out := make([]Region, 0, len(order))
	for _, key := range order {
		out = append(out, bySpan[key])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Byte < out[j].Start.Byte })
	return out
}

// CommentDirectiveDetector tags the declaration immediately following a
// `// @lang` / `// @language: lang` comment with the named language.
// Grounded on `original_source/src/language_regions/async_detection.rs`'s
// directive-based detection path (its highest-priority source) and
// `ir.Comment.Directive`/`PrecedesDeclaration`, which already do the
// text-parsing and run-membership work this detector only has to consume.
type CommentDirectiveDetector struct{}

func (CommentDirectiveDetector) Name() string { return "CommentDirective" }

func (CommentDirectiveDetector) Detect(source string, doc ir.DocumentIR) []Region {
	if doc.Root == nil {
		return nil
	}

	var regions []Region
	ir.Walk(doc.Root, ir.AbsolutePosition(doc.Root, ir.Position{}), func(n ir.SemanticNode, start, end ir.Position) bool {
		for _, c := range doc.CommentsBefore(start) {
			if !c.PrecedesDeclaration() {
				continue
			}
			lang, ok := c.Directive()
			if !ok {
				continue
			}
			regions = append(regions, Region{
				Language: lang,
				Content:  sliceBytes(source, start.Byte, end.Byte),
				Start:    start,
				End:      end,
				Source:   CommentDirective,
			})
		}
		return true
	})
	return regions
}

// MettaChannelStringDetector treats the string-literal argument of a send
// on a `rho:metta:*` channel as an embedded MeTTa region: the Rholang
// convention this workspace follows for inline MeTTa, mirrored from
// `async_detection.rs`'s own test fixtures
// (`@"rho:metta:compile"!("(= test 123)")`).
type MettaChannelStringDetector struct{}

func (MettaChannelStringDetector) Name() string { return "MettaChannelString" }

func (MettaChannelStringDetector) Detect(source string, doc ir.DocumentIR) []Region {
	if doc.Root == nil {
		return nil
	}

	var regions []Region
	ir.Walk(doc.Root, ir.Position{}, func(n ir.SemanticNode, start, end ir.Position) bool {
		gn, ok := n.(*ir.Node)
		if !ok || gn.Category() != ir.CategoryInvocation {
			return true
		}
		if !strings.HasPrefix(gn.ChannelName, "rho:metta:") {
			return true
		}

		childStart := start
		for i := 0; i < n.ChildCount(); i++ {
			child := n.ChildAt(i)
			childStart = ir.AbsolutePosition(child, childStart)
			childEnd := ir.AbsoluteEnd(child, childStart)
			if arg, ok := child.(*ir.Node); ok && arg.Category() == ir.CategoryLiteral {
				content := unquote(arg.Value)
				regions = append(regions, Region{
					Language: "metta",
					Content:  content,
					Start:    childStart,
					End:      childEnd,
					Source:   StringLiteral,
				})
			}
			childStart = childEnd
		}
		return true
	})
	return regions
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func sliceBytes(s string, start, end uint32) string {
	if int(end) > len(s) {
		end = uint32(len(s))
	}
	if int(start) > len(s) || start > end {
		return ""
	}
	return s[start:end]
}

// MapPosition maps a position (r, c) inside a region, relative to the
// region's own content, back to an absolute host-document position. This
// is the first-line-offset rule (§4.10): when r == 0 the region's first
// line shares the host line the region started on, so c is an offset from
// regionStart's column; on any later line c is already an absolute host
// column, since the region's own content fully occupies those lines.
func MapPosition(regionStart ir.Position, r, c uint32) ir.Position {
	if r == 0 {
		return ir.Position{
			Row:    regionStart.Row,
			Column: regionStart.Column + c,
			Byte:   regionStart.Byte + c,
		}
	}
	return ir.Position{
		Row:    regionStart.Row + r,
		Column: c,
	}
}
