// Package table reads and writes catima.csv, the comma-separated table at the
// heart of a Catima export.
//
// The dialect is the common one: comma delimiter, double-quote quoting with
// doubled quotes as escapes, and line breaks allowed inside quoted fields.
// Unlike encoding/csv, blank lines are reported as empty records because they
// separate the sections of the file, and embedded line breaks are kept
// byte-for-byte so a parsed table can be written back unchanged.
package table

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

const (
	delimiter = ','
	quote     = '"'
)

// ErrUnterminatedQuote is returned when input ends inside a quoted field.
var ErrUnterminatedQuote = errors.New("unexpected end of data inside quoted field")

// ParseError reports the line a malformed record started on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record on line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type readState int

const (
	stateStartRecord readState = iota
	stateStartField
	stateInField
	stateInQuoted
	stateQuoteInQuoted
)

// Reader reads records from comma-separated input.
type Reader struct {
	r     *bufio.Reader
	line  int
	start int
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), line: 1}
}

// Line returns the line on which the most recently read record started.
func (r *Reader) Line() int {
	return r.start
}

// Read returns the next record. A blank line yields an empty, non-nil record.
// At end of input Read returns nil, io.EOF.
func (r *Reader) Read() ([]string, error) {
	r.start = r.line
	record := []string{}
	var field []byte
	state := stateStartRecord

	save := func() {
		record = append(record, string(field))
		field = field[:0]
	}

	for {
		c, err := r.r.ReadByte()
		if err == io.EOF {
			switch state {
			case stateStartRecord:
				return nil, io.EOF
			case stateInQuoted:
				return nil, &ParseError{Line: r.start, Err: ErrUnterminatedQuote}
			}
			save()
			return record, nil
		}
		if err != nil {
			return nil, err
		}

		if c == '\n' {
			r.line++
		}

		switch state {
		case stateStartRecord:
			if c == '\r' || c == '\n' {
				return record, r.endLine(c)
			}
			state = stateStartField
			fallthrough
		case stateStartField:
			switch c {
			case '\r', '\n':
				save()
				return record, r.endLine(c)
			case quote:
				state = stateInQuoted
			case delimiter:
				save()
			default:
				field = append(field, c)
				state = stateInField
			}
		case stateInField:
			switch c {
			case '\r', '\n':
				save()
				return record, r.endLine(c)
			case delimiter:
				save()
				state = stateStartField
			default:
				field = append(field, c)
			}
		case stateInQuoted:
			if c == quote {
				state = stateQuoteInQuoted
			} else {
				field = append(field, c)
			}
		case stateQuoteInQuoted:
			switch c {
			case quote:
				field = append(field, quote)
				state = stateInQuoted
			case delimiter:
				save()
				state = stateStartField
			case '\r', '\n':
				save()
				return record, r.endLine(c)
			default:
				// Text after a closing quote is kept, as lenient readers do.
				field = append(field, c)
				state = stateInField
			}
		}
	}
}

// endLine consumes the \n of a \r\n pair.
func (r *Reader) endLine(c byte) error {
	if c != '\r' {
		return nil
	}
	next, err := r.r.ReadByte()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if next == '\n' {
		r.line++
		return nil
	}
	return r.r.UnreadByte()
}
