// Package channels turns the EPG site's multicast table into playlist-ready
// channel records.
package channels

import (
	"fmt"

	"github.com/snapetech/sctv-playlist/internal/htmltable"
	"github.com/snapetech/sctv-playlist/internal/icons"
)

// headerMarker is the first-column text of the table's header row.
const headerMarker = "序号"

const minCells = 3

// Raw is one channel table row as published.
type Raw struct {
	ID      string
	Name    string
	Address string // multicast host:port, not validated
}

// Channel is a Raw that survived filtering, with its display name cleaned,
// its group tag assigned and its logo looked up ("" when unknown).
type Channel struct {
	ID      string
	Name    string
	Address string
	Tag     string
	Icon    string
}

// Stats counts what Normalize did with its input.
type Stats struct {
	Rows      int // table rows seen
	Raw       int // rows that became Raw records
	Filtered  int // Raw records dropped by filter keywords
	Processed int
	WithIcon  int
}

func (s Stats) String() string {
	return fmt.Sprintf("rows=%d raw=%d filtered=%d processed=%d icons=%d",
		s.Rows, s.Raw, s.Filtered, s.Processed, s.WithIcon)
}

// RawFromRows reads channel records from table rows, skipping the header
// row and rows shorter than three cells.
func RawFromRows(rows []htmltable.Row) []Raw {
	var out []Raw
	for _, row := range rows {
		if len(row) > 0 && row[0].Text == headerMarker {
			continue
		}
		if err := row.Require(minCells); err != nil {
			continue
		}
		out = append(out, Raw{
			ID:      row[0].Text,
			Name:    row[1].Text,
			Address: row[2].Text,
		})
	}
	return out
}

// Process filters, cleans, categorizes and attaches logos, keeping input order.
func Process(raws []Raw, ix icons.Index, rules Rules) []Channel {
	out := make([]Channel, 0, len(raws))
	for _, r := range raws {
		if rules.Filtered(r.Name) {
			continue
		}
		name := rules.Cleanup(r.Name)
		out = append(out, Channel{
			ID:      r.ID,
			Name:    name,
			Address: r.Address,
			Tag:     rules.Categorize(name),
			Icon:    ix.Lookup(name),
		})
	}
	return out
}

// Normalize is RawFromRows followed by Process, with counts for logging.
func Normalize(rows []htmltable.Row, ix icons.Index, rules Rules) ([]Channel, Stats) {
	raws := RawFromRows(rows)
	out := Process(raws, ix, rules)
	return out, Count(len(rows), raws, out)
}

// Count derives Stats from the stages of one normalization.
func Count(rows int, raws []Raw, out []Channel) Stats {
	st := Stats{
		Rows:      rows,
		Raw:       len(raws),
		Filtered:  len(raws) - len(out),
		Processed: len(out),
	}
	for _, c := range out {
		if c.Icon != "" {
			st.WithIcon++
		}
	}
	return st
}
