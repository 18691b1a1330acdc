package vdoc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
)

func TestCommentDirectiveDetectorTagsFollowingDeclaration(t *testing.T) {
	source := "// @metta\nx0"

	var prevCommentEnd ir.Position
	commentBase := ir.MakeSimpleBase(ir.Position{Byte: 0}, ir.Position{Byte: 9}, &prevCommentEnd)
	comment := ir.NewComment(ir.CommentLine, commentBase, "// @metta", 9)
	comment.RestoreRunFlags(true, false)

	var prevEnd ir.Position
	decl := ir.NewNode(ir.KindVar, ir.CategoryVariable, ir.LanguageRholang,
		ir.MakeSimpleBase(ir.Position{Byte: 10}, ir.Position{Byte: 12}, &prevEnd), nil)
	decl.Value = "x0"

	doc := ir.DocumentIR{Root: decl, Comments: []ir.Comment{comment}}

	regions := CommentDirectiveDetector{}.Detect(source, doc)
	require.Len(t, regions, 1)
	require.Equal(t, "metta", regions[0].Language)
	require.Equal(t, CommentDirective, regions[0].Source)
	require.Equal(t, uint32(10), regions[0].Start.Byte)
}

func TestCommentDirectiveDetectorSkipsCommentsNotPrecedingADeclaration(t *testing.T) {
	source := "// just a note\nx0"

	var prevCommentEnd ir.Position
	commentBase := ir.MakeSimpleBase(ir.Position{Byte: 0}, ir.Position{Byte: 14}, &prevCommentEnd)
	comment := ir.NewComment(ir.CommentLine, commentBase, "// just a note", 14)
	// precedesDeclaration left false.

	var prevEnd ir.Position
	decl := ir.NewNode(ir.KindVar, ir.CategoryVariable, ir.LanguageRholang,
		ir.MakeSimpleBase(ir.Position{Byte: 15}, ir.Position{Byte: 17}, &prevEnd), nil)

	doc := ir.DocumentIR{Root: decl, Comments: []ir.Comment{comment}}

	require.Empty(t, CommentDirectiveDetector{}.Detect(source, doc))
}

func TestMettaChannelStringDetectorExtractsArgument(t *testing.T) {
	source := `@"rho:metta:compile"!("(= test 123)")`

	var prevEnd ir.Position
	channel := ir.NewNode(ir.KindQuote, ir.CategoryBlock, ir.LanguageRholang,
		ir.MakeSimpleBase(ir.Position{Byte: 0}, ir.Position{Byte: 21}, &prevEnd), nil)

	arg := ir.NewNode(ir.KindStringLit, ir.CategoryLiteral, ir.LanguageRholang,
		ir.MakeSimpleBase(ir.Position{Byte: 22}, ir.Position{Byte: 37}, &prevEnd), nil)
	arg.Value = `"(= test 123)"`

	send := ir.NewNode(ir.KindSend, ir.CategoryInvocation, ir.LanguageRholang,
		ir.MakeSimpleBase(ir.Position{Byte: 0}, ir.Position{Byte: 38}, &ir.Position{}),
		[]ir.SemanticNode{channel, arg})
	send.ChannelName = "rho:metta:compile"

	doc := ir.DocumentIR{Root: send}

	regions := MettaChannelStringDetector{}.Detect(source, doc)
	require.Len(t, regions, 1)
	require.Equal(t, "metta", regions[0].Language)
	require.Equal(t, "(= test 123)", regions[0].Content)
	require.Equal(t, StringLiteral, regions[0].Source)
}

func TestMettaChannelStringDetectorIgnoresOtherChannels(t *testing.T) {
	channel := ir.NewNode(ir.KindVar, ir.CategoryVariable, ir.LanguageRholang, ir.NodeBase{}, nil)
	arg := ir.NewNode(ir.KindStringLit, ir.CategoryLiteral, ir.LanguageRholang, ir.NodeBase{}, nil)
	arg.Value = `"not metta"`

	send := ir.NewNode(ir.KindSend, ir.CategoryInvocation, ir.LanguageRholang, ir.NodeBase{},
		[]ir.SemanticNode{channel, arg})
	send.ChannelName = "someOtherChannel"

	doc := ir.DocumentIR{Root: send}
	require.Empty(t, MettaChannelStringDetector{}.Detect("", doc))
}

func TestDetectorRegistryDedupesCommentDirectiveWins(t *testing.T) {
	span := Region{Start: ir.Position{Byte: 0}, End: ir.Position{Byte: 5}}
	directive := span
	directive.Language = "metta"
	directive.Source = CommentDirective

	stringLit := span
	stringLit.Language = "metta"
	stringLit.Source = StringLiteral

	r := NewDetectorRegistry()
	r.Register(fakeDetector{regions: []Region{stringLit}})
	r.Register(fakeDetector{regions: []Region{directive}})

	out := r.DetectAll("", ir.DocumentIR{})
	require.Len(t, out, 1)
	require.Equal(t, CommentDirective, out[0].Source, "CommentDirective must dominate for an identical span")
}

type fakeDetector struct{ regions []Region }

func (f fakeDetector) Name() string                              { return "fake" }
func (f fakeDetector) Detect(string, ir.DocumentIR) []Region      { return f.regions }

func TestMapPositionFirstLineIsOffsetFromRegionStart(t *testing.T) {
	regionStart := ir.Position{Row: 3, Column: 10, Byte: 100}
	mapped := MapPosition(regionStart, 0, 3)
	require.Equal(t, ir.Position{Row: 3, Column: 13, Byte: 103}, mapped)
}

func TestMapPositionLaterLineColumnIsAbsolute(t *testing.T) {
	regionStart := ir.Position{Row: 3, Column: 10, Byte: 100}
	mapped := MapPosition(regionStart, 1, 2)
	require.Equal(t, uint32(4), mapped.Row)
	require.Equal(t, uint32(2), mapped.Column)
}

func TestWorkerDetectRoundTrips(t *testing.T) {
	registry := NewDetectorRegistryWithDefaults()
	w := NewWorker(registry)
	defer w.Stop()

	var prevEnd ir.Position
	decl := ir.NewNode(ir.KindVar, ir.CategoryVariable, ir.LanguageRholang,
		ir.MakeSimpleBase(ir.Position{}, ir.Position{Byte: 2}, &prevEnd), nil)
	doc := ir.DocumentIR{Root: decl}

	select {
	case result := <-w.Detect("file:///a.rho", "x0", doc):
		require.Equal(t, "file:///a.rho", result.URI)
		require.NotEqual(t, result.ID.String(), "")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for detection result")
	}
}

func TestShouldParallelizeRequiresBothDocumentCountAndWorkSize(t *testing.T) {
	small := make([]DetectionRequest, 3)
	require.False(t, shouldParallelize(small), "fewer than 5 documents must stay sequential")

	// 9 empty documents: 9*10µs = 90µs, under the 100µs threshold.
	manyButTiny := make([]DetectionRequest, 9)
	require.False(t, shouldParallelize(manyButTiny), "below the work-time threshold must stay sequential")

	large := make([]DetectionRequest, 10)
	for i := range large {
		large[i].Source = string(make([]byte, 200))
	}
	require.True(t, shouldParallelize(large))
}
