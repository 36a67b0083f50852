package gedcom

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrDuplicateXref = errors.New("identificador duplicat")
	ErrMissingHeader = errors.New("falta la capçalera GEDCOM")
	ErrLineTooLong   = errors.New("línia massa llarga")
)

// ParseErrorCode indica quina part de l'estructura de la línia ha fallat.
type ParseErrorCode int

const (
	ErrCodeNone ParseErrorCode = iota
	ErrCodeEmptyLine
	ErrCodeMissingLevel
	ErrCodeInvalidLevel
	ErrCodeInvalidDelimiter
	ErrCodeXrefNotTerminated
	ErrCodeMissingTag
	ErrCodeInvalidTag
	ErrCodePointerNotTerminated
	ErrCodeInvalidCharacter
)

var parseErrorTexts = map[ParseErrorCode]string{
	ErrCodeEmptyLine:            "línia buida",
	ErrCodeMissingLevel:         "falta el nivell",
	ErrCodeInvalidLevel:         "nivell invàlid",
	ErrCodeInvalidDelimiter:     "delimitador invàlid",
	ErrCodeXrefNotTerminated:    "identificador sense @ final",
	ErrCodeMissingTag:           "falta l'etiqueta",
	ErrCodeInvalidTag:           "etiqueta invàlida",
	ErrCodePointerNotTerminated: "punter sense @ final",
	ErrCodeInvalidCharacter:     "caràcter no permès",
}

func (c ParseErrorCode) String() string {
	if s, ok := parseErrorTexts[c]; ok {
		return s
	}
	return "sense error"
}

// ParseError és un error estructural d'una línia. El lector el registra i
// salta la línia.
type ParseError struct {
	Code       ParseErrorCode
	LineNumber int
	Column     int
	Line       string
}

func (e *ParseError) Error() string {
	if e.LineNumber > 0 {
		return fmt.Sprintf("línia %d, columna %d: %s: %q", e.LineNumber, e.Column, e.Code, e.Line)
	}
	return fmt.Sprintf("columna %d: %s: %q", e.Column, e.Code, e.Line)
}

func newParseError(code ParseErrorCode, col int, line string) *ParseError {
	return &ParseError{Code: code, Column: col, Line: line}
}
