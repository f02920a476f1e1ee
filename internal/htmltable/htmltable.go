// Package htmltable extracts table rows from loosely-formed HTML pages such
// as the EPG site's channel and logo listings.
package htmltable

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// ErrMalformedRow is matched (errors.Is) by every *MalformedRowError.
var ErrMalformedRow = errors.New("malformed row")

// MalformedRowError reports a row with fewer cells than a consumer needs.
type MalformedRowError struct {
	Need int
	Got  int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row: fewer than %d cells (got %d)", e.Need, e.Got)
}

func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

// Cell is one <td>. Text is every descendant text node trimmed and
// concatenated. Href is the target of the first descendant <a> that has an
// href attribute; HasLink distinguishes href="" from no link at all.
type Cell struct {
	Text    string
	Href    string
	HasLink bool
}

// Row is the ordered <td> cells of one <tr>.
type Row []Cell

// Require returns a *MalformedRowError when r has fewer than n cells.
func (r Row) Require(n int) error {
	if len(r) < n {
		return &MalformedRowError{Need: n, Got: len(r)}
	}
	return nil
}

// Texts returns the cell texts in order.
func (r Row) Texts() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Text
	}
	return out
}

// ParseRows parses data and returns one Row per <tr> element, in document
// order, regardless of which table it sits in. Nested rows are reported too
// and an outer row also sees the cells of tables nested inside it. Rows with
// no <td> cells (header-only <th> rows, empty rows) are omitted. Malformed
// markup never fails the parse; the HTML5 tree builder repairs it. The
// builder also drops <tr> elements outside any <table>.
//
// The character set comes from a BOM or <meta> declaration in data.
func ParseRows(data []byte) []Row {
	return ParsePage(data, "")
}

// ParsePage is ParseRows for a fetched page whose Content-Type header may
// name its charset. The header wins over a <meta> declaration.
func ParsePage(data []byte, contentType string) []Row {
	doc, err := html.Parse(bytes.NewReader(ToUTF8(data, contentType)))
	if err != nil {
		// only a read error, which a byte slice never returns
		return nil
	}
	var rows []Row
	for tr := range elements(doc, atom.Tr) {
		var row Row
		for td := range elements(tr, atom.Td) {
			row = append(row, cellOf(td))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// ToUTF8 decodes an HTML page to valid UTF-8. The encoding is taken from a
// BOM, then the contentType charset parameter, then a <meta> declaration.
// Without a BOM or header, a body that is valid UTF-8 throughout is kept
// as UTF-8 even when <meta> claims windows-1252 (or nothing at all).
// Bytes that do not decode become U+FFFD.
func ToUTF8(data []byte, contentType string) []byte {
	e, name, certain := charset.DetermineEncoding(data, contentType)
	// DetermineEncoding only looks at the first 1 KiB before falling back.
	if !certain && name == "windows-1252" && utf8.Valid(data) {
		e = encoding.Nop
	}
	out, err := e.NewDecoder().Bytes(data)
	if err != nil {
		out = data
	}
	return bytes.ToValidUTF8(out, []byte("\uFFFD"))
}

// elements yields every element of type a below n (excluding n) in document order.
func elements(n *html.Node, a atom.Atom) func(yield func(*html.Node) bool) {
	return func(yield func(*html.Node) bool) {
		for d := range n.Descendants() {
			if d.Type == html.ElementNode && d.DataAtom == a {
				if !yield(d) {
					return
				}
			}
		}
	}
}

func cellOf(td *html.Node) Cell {
	var c Cell
	var text strings.Builder
	for d := range td.Descendants() {
		switch d.Type {
		case html.TextNode:
			text.WriteString(strings.TrimSpace(d.Data))
		case html.ElementNode:
			if d.DataAtom != atom.A || c.HasLink {
				continue
			}
			if href, ok := attr(d, "href"); ok {
				c.Href = href
				c.HasLink = true
			}
		}
	}
	c.Text = text.String()
	return c
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
