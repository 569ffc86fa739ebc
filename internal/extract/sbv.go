package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vietdataverse/fincrawl/internal/record"
)

var (
	vndAmountRe = regexp.MustCompile(`([\d.,]+)\s*VND`)
	issueDateRe = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
)

// parseIssueDate parses the dd/mm/yyyy announcement date SBV prints.
func parseIssueDate(s string) (time.Time, bool) {
	m := issueDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("02/01/2006", m[0])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseSBVCentralRate reads the announcement table on the SBV portal. The
// table is identified by its "Tỷ giá trung tâm" or "Đô la Mỹ" header; rows
// are label/value pairs carrying the rate, the document number and the
// issue date.
func parseSBVCentralRate(doc *goquery.Document, req Request) (*record.Candidate, error) {
	var cand *record.Candidate

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		tableText := table.Text()
		if !strings.Contains(tableText, "Tỷ giá trung tâm") &&
			!strings.Contains(tableText, "Đô la Mỹ") {
			return true
		}

		c := record.New(req.Kind, req.SourceID, req.Date)
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cols := row.Find("td, th")
			if cols.Length() < 2 {
				return
			}
			label := cellText(cols.Eq(0))
			value := cellText(cols.Eq(1))
			lower := strings.ToLower(label)

			if strings.Contains(label, "Đô la Mỹ") || strings.Contains(strings.ToUpper(label), "USD") {
				if m := vndAmountRe.FindStringSubmatch(value); m != nil {
					if v, ok := record.ParseDecimal(m[1]); ok {
						_ = c.Set(record.FieldCentralRate, v)
					}
				}
			}
			if strings.Contains(lower, "văn bản") || strings.Contains(lower, "document") {
				c.DocumentNo = value
			}
			if strings.Contains(lower, "ban hành") || strings.Contains(lower, "ngày") {
				if d, ok := parseIssueDate(value); ok {
					c.Date = d
				}
			}
		})

		if _, ok := c.Get(record.FieldCentralRate); ok {
			cand = c
			return false
		}
		return true
	})

	if cand == nil {
		return nil, nil
	}
	return cand, nil
}
