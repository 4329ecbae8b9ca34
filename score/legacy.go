package score

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// legacyDateLayout is the format the old HTML board used.
const legacyDateLayout = "2006-01-02"

// ImportLegacyHTMLFile parses the old hall-of-fame HTML file into entries.
func ImportLegacyHTMLFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ImportLegacyHTML(f)
}

// ImportLegacyHTML parses the legacy table markup: one <tr> per entry with
// cells score, nickname, gender, note, date in order. Header rows and rows
// with an unparsable score are skipped; an unparsable date leaves the date
// zero rather than dropping the row.
func ImportLegacyHTML(r io.Reader) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse legacy board: %w", err)
	}

	var entries []Entry
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return // header or separator row
		}

		scoreText := strings.TrimSpace(cells.Eq(0).Text())
		v, err := strconv.ParseInt(scoreText, 10, 32)
		if err != nil || v < 0 {
			return
		}

		e := Entry{
			Score:    int32(v),
			Nickname: strings.TrimSpace(cells.Eq(1).Text()),
		}
		if cells.Length() > 2 {
			e.Gender = strings.TrimSpace(cells.Eq(2).Text())
		}
		if cells.Length() > 3 {
			e.Note = strings.TrimSpace(cells.Eq(3).Text())
		}
		if cells.Length() > 4 {
			if d, err := time.Parse(legacyDateLayout, strings.TrimSpace(cells.Eq(4).Text())); err == nil {
				e.Date = d
			}
		}
		entries = append(entries, e)
	})
	return entries, nil
}
