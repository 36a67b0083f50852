package gedcom

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/text/transform"
)

const maxLineLength = 1024 * 1024

// Result és el resultat d'una lectura. Database conté el que s'ha pogut
// llegir encara que OK sigui fals.
type Result struct {
	Database *Database
	Warnings []string
	Errors   []*ParseError

	// OK és fals si falta el HEAD o hi ha una línia massa llarga; Fatal en diu el motiu.
	OK    bool
	Fatal error

	Charset   string
	Restarted bool
	Lines     int
}

// Reader llegeix fitxers GEDCOM. No és segur fer-lo servir des de dues
// goroutines alhora.
type Reader struct {
	Options ParserOptions

	// OnProgress rep el percentatge llegit (0-100) cada cop que canvia.
	OnProgress func(percent int)
}

func NewReader(opts ParserOptions) *Reader {
	return &Reader{Options: opts}
}

func (r *Reader) ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "obrint %s", path)
	}
	defer f.Close()
	return r.Read(f)
}

// Read llegeix tot el flux. Si el HEAD declara un CHAR diferent del que
// s'estava fent servir, es torna a començar des del principi, un sol cop.
func (r *Reader) Read(src io.ReadSeeker) (*Result, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "calculant la mida")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "tornant a l'inici")
	}
	head := make([]byte, 4)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "llegint la capçalera")
	}
	cs, ok := detectBOM(head[:n])
	if !ok {
		cs = charsetUTF8
	}

	res, next, err := r.pass(src, size, cs, true)
	if err != nil {
		return nil, err
	}
	if next != nil {
		zap.S().Named("gedcom").Debugf("CHAR %s, es torna a llegir el fitxer", next.Name)
		res, _, err = r.pass(src, size, *next, false)
		if err != nil {
			return nil, err
		}
		res.Restarted = true
	}
	return res, nil
}

// ReadString és per a proves i textos petits.
func (r *Reader) ReadString(s string) (*Result, error) {
	return r.Read(strings.NewReader(s))
}

func (r *Reader) pass(src io.ReadSeeker, size int64, cs Charset, allowRestart bool) (*Result, *Charset, error) {
	log := zap.S().Named("gedcom")
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, nil, errors.Wrap(err, "tornant a l'inici")
	}

	db := NewDatabase()
	ps := newParseState(db)
	var next *Charset
	if allowRestart && !cs.FromBOM {
		ps.onCharset = func(v string) bool {
			c, known := charsetForTag(v)
			if !known {
				ps.warnf("joc de caràcters desconegut %q, es llegeix com %s", v, cs.Name)
				return false
			}
			if c.Name == cs.Name {
				return false
			}
			next = &c
			return true
		}
	}

	pr := &progressReader{r: src, size: size, fn: r.OnProgress, last: -1}
	sc := bufio.NewScanner(transform.NewReader(pr, cs.newDecoder()))
	sc.Buffer(make([]byte, 64*1024), maxLineLength)
	sc.Split(scanGedcomLines)

	lp := NewLineParser(r.Options)
	res := &Result{Database: db, Charset: cs.Name, OK: true}
	for sc.Scan() {
		ps.lineNo++
		raw := sc.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		line, err := lp.ParseLine(raw)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.LineNumber = ps.lineNo
				res.Errors = append(res.Errors, pe)
				log.Debugf("%v", pe)
			}
			continue
		}
		ps.process(line)
		if ps.restart {
			return nil, next, nil
		}
		pr.report()
	}
	if err := sc.Err(); err != nil {
		if !errors.Is(err, bufio.ErrTooLong) {
			return nil, nil, errors.Wrap(err, "llegint el fitxer")
		}
		res.OK = false
		res.Fatal = errors.Wrapf(ErrLineTooLong, "després de la línia %d", ps.lineNo)
	}

	res.Lines = ps.lineNo
	ps.finish()
	if db.Header == nil {
		res.OK = false
		if res.Fatal == nil {
			res.Fatal = ErrMissingHeader
		}
	}
	res.Warnings = ps.warnings
	for _, w := range res.Warnings {
		log.Debugf("%s", w)
	}
	pr.done()
	return res, nil, nil
}

// scanGedcomLines talla per CR, LF, CRLF o LFCR.
func scanGedcomLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, c := range data {
		if c != '\r' && c != '\n' {
			continue
		}
		if i+1 < len(data) {
			if n := data[i+1]; (n == '\r' || n == '\n') && n != c {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// progressReader compta els bytes llegits del fitxer original.
type progressReader struct {
	r    io.Reader
	read int64
	size int64
	last int
	fn   func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	return n, err
}

func (p *progressReader) report() {
	if p.fn == nil || p.size <= 0 {
		return
	}
	pct := int(p.read * 100 / p.size)
	if pct > 100 {
		pct = 100
	}
	if pct != p.last {
		p.last = pct
		p.fn(pct)
	}
}

func (p *progressReader) done() {
	if p.fn != nil && p.last != 100 {
		p.last = 100
		p.fn(100)
	}
}
