package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsDocComment(t *testing.T) {
	require.True(t, IsDocComment(CommentLine, "/// a doc comment"))
	require.False(t, IsDocComment(CommentLine, "// a plain comment"))
	require.True(t, IsDocComment(CommentBlock, "/** a doc block */"))
	require.False(t, IsDocComment(CommentBlock, "/* a plain block */"))
}

func TestCommentDirective(t *testing.T) {
	prevEnd := Position{}
	base := MakeSimpleBase(Position{Byte: 0}, Position{Byte: 20}, &prevEnd)
	c := NewComment(CommentLine, base, "// @language: metta", 20)

	lang, ok := c.Directive()
	require.True(t, ok)
	require.Equal(t, "metta", lang)
}

func TestCommentDirectiveShortForm(t *testing.T) {
	prevEnd := Position{}
	base := MakeSimpleBase(Position{Byte: 0}, Position{Byte: 10}, &prevEnd)
	c := NewComment(CommentLine, base, "// @metta", 10)

	lang, ok := c.Directive()
	require.True(t, ok)
	require.Equal(t, "metta", lang)
}

func TestCommentDirectiveAbsent(t *testing.T) {
	prevEnd := Position{}
	base := MakeSimpleBase(Position{Byte: 0}, Position{Byte: 10}, &prevEnd)
	c := NewComment(CommentLine, base, "// just a note", 10)

	_, ok := c.Directive()
	require.False(t, ok)
}

func TestCommentDirectiveMemoized(t *testing.T) {
	prevEnd := Position{}
	base := MakeSimpleBase(Position{Byte: 0}, Position{Byte: 20}, &prevEnd)
	c := NewComment(CommentLine, base, "// @language: metta", 20)

	lang1, ok1 := c.Directive()
	lang2, ok2 := c.Directive()
	require.Equal(t, lang1, lang2)
	require.Equal(t, ok1, ok2)
}

func TestCommentEndByte(t *testing.T) {
	prevEnd := Position{}
	base := MakeSimpleBase(Position{Byte: 5}, Position{Byte: 25}, &prevEnd)
	c := NewComment(CommentBlock, base, "/* x */", 25)
	require.Equal(t, uint32(25), c.EndByte())
}
