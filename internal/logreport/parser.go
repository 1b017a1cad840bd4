// Package logreport parses the processing reports the bank drops in the
// log directory.
//
// A report is a small XML document. Only the first occurrence of each tag
// matters, wherever it is nested:
//
//	<log>
//	  <sens>emission</sens>
//	  <repertoire>/exa/emission</repertoire>
//	  <fichier>PAIN_20240101.xml</fichier>
//	  <com_ref>REF42</com_ref>
//	  <resultat>NOK042</resultat>
//	  <rapport>rejected: unknown IBAN</rapport>
//	</log>
package logreport

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
)

// Result is the outcome the bank reports for a file.
type Result string

const (
	ResultSuccess Result = "success"
	ResultError   Result = "error"
)

// Report is a parsed log file.
type Report struct {
	Direction string // emission, reception, import
	Directory string
	FileName  string
	ComRef    string
	Result    Result
	ErrorCode *int // set for NOK results only
	Text      string
}

var tags = []string{"sens", "repertoire", "fichier", "com_ref", "resultat", "rapport"}

// Parse decodes a report. Content is read as latin-1, like the bank emits it.
func Parse(source string, data []byte) (*Report, error) {
	fields, err := findText(latin1ToUTF8(data))
	if err != nil {
		return nil, &errs.ParseError{Source: source, Err: err}
	}

	result, ok := fields["resultat"]
	if !ok {
		return nil, &errs.ParseError{Source: source, Err: errors.New("missing resultat")}
	}

	r := &Report{
		Direction: fields["sens"],
		Directory: fields["repertoire"],
		FileName:  fields["fichier"],
		ComRef:    fields["com_ref"],
		Text:      fields["rapport"],
	}

	if err := r.setResult(result); err != nil {
		return nil, &errs.ParseError{Source: source, Err: err}
	}
	return r, nil
}

// setResult maps "OK..." to success and "NOK<code>" to error with the code.
func (r *Report) setResult(raw string) error {
	switch {
	case strings.HasPrefix(raw, "NOK"):
		code, err := strconv.Atoi(strings.TrimSpace(raw[3:]))
		if err != nil {
			return fmt.Errorf("invalid error code in resultat %q", raw)
		}
		r.Result = ResultError
		r.ErrorCode = &code
	case strings.HasPrefix(raw, "OK"):
		r.Result = ResultSuccess
	default:
		return fmt.Errorf("unknown resultat %q", raw)
	}
	return nil
}

// findText returns the direct text of the first element of each tag.
func findText(data []byte) (map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// content was transcoded already, whatever the prolog declares
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	wanted := make(map[string]bool, len(tags))
	for _, t := range tags {
		wanted[t] = true
	}

	found := make(map[string]string)
	var current string
	var text strings.Builder
	depth, currentDepth := 0, 0
	sawRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			sawRoot = true
			name := t.Name.Local
			if current == "" && wanted[name] {
				if _, done := found[name]; !done {
					current, currentDepth = name, depth
					text.Reset()
				}
			}
		case xml.CharData:
			if current != "" && depth == currentDepth {
				text.Write(t)
			}
		case xml.EndElement:
			if current != "" && depth == currentDepth {
				found[current] = strings.TrimSpace(text.String())
				current = ""
			}
			depth--
		}
	}

	if !sawRoot {
		return nil, errors.New("empty document")
	}
	return found, nil
}

func latin1ToUTF8(data []byte) []byte {
	if isASCII(data) {
		return data
	}
	buf := make([]byte, 0, len(data)+len(data)/4)
	for _, b := range data {
		buf = utf8.AppendRune(buf, rune(b))
	}
	return buf
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
