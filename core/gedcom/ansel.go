package gedcom

import (
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// anselSpacing són els caràcters d'ANSEL (Z39.47) per sobre de 0x7F que ocupen lloc.
var anselSpacing = map[byte]rune{
	0xA1: 'Ł', 0xA2: 'Ø', 0xA3: 'Đ', 0xA4: 'Þ', 0xA5: 'Æ', 0xA6: 'Œ', 0xA7: 'ʹ',
	0xA8: '·', 0xA9: '♭', 0xAA: '®', 0xAB: '±', 0xAC: 'Ơ', 0xAD: 'Ư', 0xAE: 'ʼ',
	0xB0: 'ʻ', 0xB1: 'ł', 0xB2: 'ø', 0xB3: 'đ', 0xB4: 'þ', 0xB5: 'æ', 0xB6: 'œ',
	0xB7: 'ʺ', 0xB8: 'ı', 0xB9: '£', 0xBA: 'ð', 0xBC: 'ơ', 0xBD: 'ư', 0xBE: '□',
	0xBF: '■', 0xC0: '°', 0xC1: 'ℓ', 0xC2: '℗', 0xC3: '©', 0xC4: '♯', 0xC5: '¿',
	0xC6: '¡', 0xC7: 'ß', 0xC8: '€', 0xCF: 'ß',
}

// anselCombining són els diacrítics. A ANSEL van davant de la lletra; a
// Unicode van darrere.
var anselCombining = map[byte]rune{
	0xE0: '\u0309', 0xE1: '\u0300', 0xE2: '\u0301', 0xE3: '\u0302', 0xE4: '\u0303',
	0xE5: '\u0304', 0xE6: '\u0306', 0xE7: '\u0307', 0xE8: '\u0308', 0xE9: '\u030C',
	0xEA: '\u030A', 0xEB: '\uFE20', 0xEC: '\uFE21', 0xED: '\u0315', 0xEE: '\u030B',
	0xEF: '\u0310', 0xF0: '\u0327', 0xF1: '\u0328', 0xF2: '\u0323', 0xF3: '\u0324',
	0xF4: '\u0325', 0xF5: '\u0333', 0xF6: '\u0332', 0xF7: '\u0326', 0xF8: '\u031C',
	0xF9: '\u032E', 0xFA: '\uFE22', 0xFB: '\uFE23', 0xFE: '\u0313',
}

func anselRune(c byte) rune {
	if c < 0x80 {
		return rune(c)
	}
	if r, ok := anselSpacing[c]; ok {
		return r
	}
	return utf8.RuneError
}

// anselDecoder passa d'ANSEL a UTF-8 posant cada diacrític darrere la lletra.
type anselDecoder struct{ transform.NopResetter }

func (anselDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if _, ok := anselCombining[c]; !ok {
			r := anselRune(c)
			if nDst+utf8.RuneLen(r) > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += utf8.EncodeRune(dst[nDst:], r)
			nSrc++
			continue
		}

		end := nSrc
		for end < len(src) {
			if _, ok := anselCombining[src[end]]; !ok {
				break
			}
			end++
		}
		if end == len(src) && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}

		var out []rune
		next := end
		if end < len(src) {
			out = append(out, anselRune(src[end]))
			next = end + 1
		}
		for _, m := range src[nSrc:end] {
			out = append(out, anselCombining[m])
		}
		size := 0
		for _, r := range out {
			size += utf8.RuneLen(r)
		}
		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		for _, r := range out {
			nDst += utf8.EncodeRune(dst[nDst:], r)
		}
		nSrc = next
	}
	return nDst, nSrc, nil
}

// newANSELDecoder retorna el text en forma composta (NFC): "e" + accent agut passa a "é".
func newANSELDecoder() transform.Transformer {
	return transform.Chain(anselDecoder{}, norm.NFC)
}
