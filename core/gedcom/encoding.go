package gedcom

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// Charset és la codificació amb què es llegeix el fitxer.
type Charset struct {
	Name string
	// FromBOM és cert si l'ha decidit la marca d'ordre de bytes; llavors el CHAR no la canvia.
	FromBOM bool

	newDecoder func() transform.Transformer
}

func fromEncoding(e encoding.Encoding) func() transform.Transformer {
	return func() transform.Transformer { return e.NewDecoder() }
}

var (
	charsetUTF8   = Charset{Name: "UTF-8", newDecoder: fromEncoding(unicode.UTF8)}
	charsetANSEL  = Charset{Name: "ANSEL", newDecoder: newANSELDecoder}
	charsetANSI   = Charset{Name: "ANSI", newDecoder: fromEncoding(charmap.Windows1252)}
	charsetIBMPC  = Charset{Name: "IBMPC", newDecoder: fromEncoding(charmap.CodePage437)}
	charsetMac    = Charset{Name: "MACINTOSH", newDecoder: fromEncoding(charmap.Macintosh)}
	charsetLatin1 = Charset{Name: "ISO-8859-1", newDecoder: fromEncoding(charmap.ISO8859_1)}
)

// detectBOM mira els primers bytes. Si no hi ha marca, retorna fals.
// UTF-32 LE es comprova abans que UTF-16 LE perquè comencen igual.
func detectBOM(head []byte) (Charset, bool) {
	switch {
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return Charset{Name: "UTF-32LE", FromBOM: true,
			newDecoder: fromEncoding(utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM))}, true
	case bytes.HasPrefix(head, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return Charset{Name: "UTF-32BE", FromBOM: true,
			newDecoder: fromEncoding(utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM))}, true
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return Charset{Name: "UTF-16LE", FromBOM: true,
			newDecoder: fromEncoding(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM))}, true
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return Charset{Name: "UTF-16BE", FromBOM: true,
			newDecoder: fromEncoding(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM))}, true
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		return Charset{Name: "UTF-8", FromBOM: true, newDecoder: fromEncoding(unicode.UTF8BOM)}, true
	}
	return Charset{}, false
}

// charsetForTag tradueix el valor de HEAD.CHAR. Un valor desconegut es llegeix com UTF-8.
func charsetForTag(value string) (Charset, bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	v = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(v)
	switch v {
	case "UTF8", "UNICODE":
		return charsetUTF8, true
	case "ANSEL":
		return charsetANSEL, true
	case "ANSI", "ASCII", "WINDOWS1252", "CP1252":
		return charsetANSI, true
	case "IBMPC", "IBM", "CP437", "DOS":
		return charsetIBMPC, true
	case "MACINTOSH", "MAC", "MACROMAN":
		return charsetMac, true
	case "ISO88591", "LATIN1":
		return charsetLatin1, true
	}
	return charsetUTF8, false
}
