// Package icons builds the channel-name → logo URL index from the EPG site's
// logo table.
package icons

import (
	"github.com/snapetech/sctv-playlist/internal/htmltable"
	"github.com/snapetech/sctv-playlist/internal/safeurl"
)

// minCells is the logo table width we read: link, (logo), name, id.
const minCells = 4

// placeholderHref marks rows with no real logo.
const placeholderHref = "#"

// Record is one usable logo table row. IconPath is as found in the page,
// usually relative to the site root.
type Record struct {
	ID       string
	Name     string
	IconPath string
}

// Index maps exact channel name to absolute logo URL.
type Index map[string]string

// Lookup returns the logo for name, or "" when there is none.
func (ix Index) Lookup(name string) string {
	return ix[name]
}

// Records extracts logo records from table rows. Rows that are too short,
// have no link in the first cell, or link to "#" are skipped and counted.
func Records(rows []htmltable.Row) (recs []Record, skipped int) {
	for _, row := range rows {
		if err := row.Require(minCells); err != nil {
			skipped++
			continue
		}
		link := row[0]
		if !link.HasLink || link.Href == placeholderHref {
			skipped++
			continue
		}
		recs = append(recs, Record{
			ID:       row[3].Text,
			Name:     row[2].Text,
			IconPath: link.Href,
		})
	}
	return recs, skipped
}

// NewIndex resolves every record's IconPath against baseURL. When a name
// repeats, the later record wins.
func NewIndex(recs []Record, baseURL string) Index {
	ix := make(Index, len(recs))
	for _, r := range recs {
		ix[r.Name] = safeurl.Resolve(baseURL, r.IconPath)
	}
	return ix
}

// BuildIndex parses the logo page and returns its index. Empty or
// unparseable input yields an empty, non-nil index.
func BuildIndex(page []byte, baseURL string) Index {
	recs, _ := Records(htmltable.ParseRows(page))
	return NewIndex(recs, baseURL)
}
