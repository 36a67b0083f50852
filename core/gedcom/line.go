package gedcom

import (
	"strconv"
	"strings"
)

// LineValueKind diu si una línia porta valor, i de quin tipus.
type LineValueKind int

const (
	ValueNone LineValueKind = iota
	ValueData
	ValuePointer
)

// Line és el resultat de partir una línia física:
// <nivell> [@xref@] <etiqueta> [valor]
type Line struct {
	Level     int
	XrefID    string
	Tag       string
	Value     string
	ValueKind LineValueKind
}

// IsPointer és cert si el valor és "@id@" i res més.
func (l Line) IsPointer() bool { return l.ValueKind == ValuePointer }

// ParserOptions activa toleràncies per fitxers que no segueixen l'estàndard.
// Cada opció es pot activar per separat.
type ParserOptions struct {
	// "1  NAME" amb més d'un espai entre camps
	AllowMultipleDelimiters bool
	// "1NAME", "0 @I1@INDI"
	AllowMissingDelimiters bool
	// línies sense nivell després d'un CONC/CONT són text del valor anterior
	AllowBareContinuation bool
	// tabuladors (horitzontals i verticals) dins dels valors
	AllowTabs bool
	// el caràcter 0x1F (information separator one) com a delimitador
	AllowIS1Delimiter bool
	// '-' i '_' dins el nom de l'etiqueta
	AllowTagPunctuation bool
}

// DefaultParserOptions ho accepta tot: és el que cal per la majoria de fitxers reals.
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		AllowMultipleDelimiters: true,
		AllowMissingDelimiters:  true,
		AllowBareContinuation:   true,
		AllowTabs:               true,
		AllowIS1Delimiter:       true,
		AllowTagPunctuation:     true,
	}
}

// StrictParserOptions no tolera res fora de l'estàndard.
func StrictParserOptions() ParserOptions {
	return ParserOptions{}
}

// LineParser parteix línies una a una. Recorda l'etiqueta anterior per
// poder tractar les continuacions sense nivell.
type LineParser struct {
	Options ParserOptions

	prevTag   string
	prevLevel int
}

func NewLineParser(opts ParserOptions) *LineParser {
	return &LineParser{Options: opts}
}

func (p *LineParser) Reset() {
	p.prevTag = ""
	p.prevLevel = 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func (p *LineParser) isDelim(c byte) bool {
	switch c {
	case ' ':
		return true
	case '\x1f':
		return p.Options.AllowIS1Delimiter
	case '\t':
		return p.Options.AllowTabs
	}
	return false
}

func (p *LineParser) isTagChar(c byte, first bool) bool {
	if isAlnum(c) {
		return true
	}
	if c == '_' && first {
		return true
	}
	if p.Options.AllowTagPunctuation && !first && (c == '_' || c == '-') {
		return true
	}
	return false
}

// skipDelimiter consumeix el delimitador a la posició i. Si falta i
// s'accepta, no consumeix res.
func (p *LineParser) skipDelimiter(s string, i int, raw string) (int, error) {
	if i >= len(s) || !p.isDelim(s[i]) {
		if p.Options.AllowMissingDelimiters {
			return i, nil
		}
		return i, newParseError(ErrCodeInvalidDelimiter, i+1, raw)
	}
	i++
	if p.Options.AllowMultipleDelimiters {
		for i < len(s) && p.isDelim(s[i]) {
			i++
		}
	} else if i < len(s) && p.isDelim(s[i]) {
		return i, newParseError(ErrCodeInvalidDelimiter, i+1, raw)
	}
	return i, nil
}

// ParseLine parteix una línia. Retorna *ParseError si l'estructura no és vàlida.
func (p *LineParser) ParseLine(raw string) (Line, error) {
	s := strings.TrimRight(raw, "\r\n")
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i == len(s) {
		return Line{}, newParseError(ErrCodeEmptyLine, 1, raw)
	}

	if !isDigit(s[i]) {
		if p.Options.AllowBareContinuation && (p.prevTag == "CONC" || p.prevTag == "CONT") {
			p.prevTag = "CONT"
			return Line{Level: p.prevLevel, Tag: "CONT", Value: s, ValueKind: ValueData}, nil
		}
		return Line{}, newParseError(ErrCodeMissingLevel, i+1, raw)
	}

	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i-start > 2 {
		return Line{}, newParseError(ErrCodeInvalidLevel, start+1, raw)
	}
	level, _ := strconv.Atoi(s[start:i])
	line := Line{Level: level}

	if i == len(s) {
		return Line{}, newParseError(ErrCodeMissingTag, i+1, raw)
	}
	var err error
	if i, err = p.skipDelimiter(s, i, raw); err != nil {
		return Line{}, err
	}

	if i < len(s) && s[i] == '@' {
		end := strings.IndexByte(s[i+1:], '@')
		if end <= 0 {
			return Line{}, newParseError(ErrCodeXrefNotTerminated, i+1, raw)
		}
		line.XrefID = s[i+1 : i+1+end]
		i += end + 2
		if i == len(s) {
			return Line{}, newParseError(ErrCodeMissingTag, i+1, raw)
		}
		if i, err = p.skipDelimiter(s, i, raw); err != nil {
			return Line{}, err
		}
	}

	start = i
	for i < len(s) && p.isTagChar(s[i], i == start) {
		i++
	}
	if i == start {
		return Line{}, newParseError(ErrCodeMissingTag, i+1, raw)
	}
	line.Tag = strings.ToUpper(s[start:i])

	if i < len(s) {
		if !p.isDelim(s[i]) {
			return Line{}, newParseError(ErrCodeInvalidTag, i+1, raw)
		}
		i++
		if err := p.parseValue(&line, s[i:], i, raw); err != nil {
			return Line{}, err
		}
	}

	p.prevTag = line.Tag
	p.prevLevel = line.Level
	return line, nil
}

func (p *LineParser) parseValue(line *Line, value string, offset int, raw string) error {
	var b strings.Builder
	for j := 0; j < len(value); j++ {
		c := value[j]
		switch {
		case c == '\t' || c == '\v':
			if !p.Options.AllowTabs {
				return newParseError(ErrCodeInvalidCharacter, offset+j+1, raw)
			}
			b.WriteByte(c)
		case c == '\x1f':
			if !p.Options.AllowIS1Delimiter {
				return newParseError(ErrCodeInvalidCharacter, offset+j+1, raw)
			}
			b.WriteByte(' ')
		case c < 0x20:
			return newParseError(ErrCodeInvalidCharacter, offset+j+1, raw)
		default:
			b.WriteByte(c)
		}
	}
	value = b.String()
	if value == "" {
		return nil
	}

	if value[0] == '@' && len(value) > 1 && value[1] != '#' && value[1] != '@' {
		trimmed := strings.TrimRight(value, " ")
		end := strings.IndexByte(trimmed[1:], '@')
		if end < 0 {
			return newParseError(ErrCodePointerNotTerminated, offset+1, raw)
		}
		if end+2 == len(trimmed) {
			line.Value = trimmed[1 : 1+end]
			line.ValueKind = ValuePointer
			return nil
		}
	}
	line.Value = strings.ReplaceAll(value, "@@", "@")
	line.ValueKind = ValueData
	return nil
}
