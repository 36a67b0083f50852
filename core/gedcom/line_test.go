package gedcom

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineBasic(t *testing.T) {
	p := NewLineParser(DefaultParserOptions())

	l, err := p.ParseLine("0 @I1@ INDI")
	require.NoError(t, err)
	assert.Equal(t, Line{Level: 0, XrefID: "I1", Tag: "INDI"}, l)

	l, err = p.ParseLine("1 FAMC @F1@")
	require.NoError(t, err)
	assert.True(t, l.IsPointer())
	assert.Equal(t, "F1", l.Value)

	l, err = p.ParseLine("2 DATE @#DJULIAN@ 1 JAN 1700")
	require.NoError(t, err)
	assert.Equal(t, ValueData, l.ValueKind)
	assert.Equal(t, "@#DJULIAN@ 1 JAN 1700", l.Value)

	l, err = p.ParseLine("1 EMAIL joan@@example.com")
	require.NoError(t, err)
	assert.Equal(t, "joan@example.com", l.Value)

	l, err = p.ParseLine("1 name Joan /Puig/\r\n")
	require.NoError(t, err)
	assert.Equal(t, "NAME", l.Tag)
	assert.Equal(t, "Joan /Puig/", l.Value)
}

func TestParseLineStructuralErrors(t *testing.T) {
	cases := []struct {
		raw  string
		code ParseErrorCode
	}{
		{"X NAME", ErrCodeMissingLevel},
		{"123 NAME", ErrCodeInvalidLevel},
		{"1", ErrCodeMissingTag},
		{"0 @I1 INDI", ErrCodeXrefNotTerminated},
		{"1 FAMC @F1", ErrCodePointerNotTerminated},
		{"   ", ErrCodeEmptyLine},
	}
	for _, c := range cases {
		t.Run(c.raw, func(t *testing.T) {
			_, err := NewLineParser(DefaultParserOptions()).ParseLine(c.raw)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, c.code, pe.Code)
		})
	}
}

func TestParseLineOptions(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		strictCode ParseErrorCode
		tag        string
		value      string
	}{
		{"multiple delimiters", "1  NAME Joan", ErrCodeInvalidDelimiter, "NAME", "Joan"},
		{"missing delimiter", "1NAME Joan", ErrCodeInvalidDelimiter, "NAME", "Joan"},
		{"tab in value", "1 NOTE a\tb", ErrCodeInvalidCharacter, "NOTE", "a\tb"},
		{"IS1 delimiter", "1\x1fNAME\x1fJoan", ErrCodeInvalidDelimiter, "NAME", "Joan"},
		{"tag punctuation", "1 _CUSTOM-TAG v", ErrCodeInvalidTag, "_CUSTOM-TAG", "v"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l, err := NewLineParser(DefaultParserOptions()).ParseLine(c.raw)
			require.NoError(t, err)
			assert.Equal(t, c.tag, l.Tag)
			assert.Equal(t, c.value, l.Value)

			_, err = NewLineParser(StrictParserOptions()).ParseLine(c.raw)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "mode estricte hauria de fallar")
			assert.Equal(t, c.strictCode, pe.Code)
		})
	}
}

func TestParseLineBareContinuation(t *testing.T) {
	p := NewLineParser(DefaultParserOptions())
	_, err := p.ParseLine("1 NOTE primera")
	require.NoError(t, err)
	_, err = p.ParseLine("2 CONC part")
	require.NoError(t, err)

	l, err := p.ParseLine("text sense nivell")
	require.NoError(t, err)
	assert.Equal(t, Line{Level: 2, Tag: "CONT", Value: "text sense nivell", ValueKind: ValueData}, l)

	// sense CONC/CONT abans no és continuació
	p.Reset()
	_, err = p.ParseLine("text sense nivell")
	assert.Error(t, err)

	strict := NewLineParser(StrictParserOptions())
	_, err = strict.ParseLine("2 CONT a")
	require.NoError(t, err)
	_, err = strict.ParseLine("text sense nivell")
	assert.Error(t, err)
}
