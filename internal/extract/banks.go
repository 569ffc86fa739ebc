package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vietdataverse/fincrawl/internal/record"
)

// acbJunkCells are cell values on ACB's rate page that look like data but
// are layout artifacts or currency headers.
var acbJunkCells = map[string]bool{
	"":                  true,
	"-":                 true,
	"VND":               true,
	"USD":               true,
	"Lãicuối kỳ":        true,
	"Lãiquý":            true,
	"Lãitháng":          true,
	"Lãi trả trước":     true,
	"Tích LũyTương Lai": true,
}

// parseACB reads ACB's personal deposit page. The rates live in the third
// table, labeled with short tenor codes ("1T", "12T"); the first data-like
// cell from column three onward carries the VND end-of-term rate.
func parseACB(doc *goquery.Document, req Request) (*record.Candidate, error) {
	tables := doc.Find("table")
	if tables.Length() < 3 {
		return nil, nil
	}
	cand := record.New(req.Kind, req.SourceID, req.Date)

	tables.Eq(2).Find("tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 3 {
			return
		}
		label := strings.ToUpper(cellText(cols.Eq(0)))
		if strings.Contains(label, "THÁNG") && strings.Contains(label, "TRUYỀN") {
			return
		}
		if strings.Contains(label, "LÃI") && strings.Contains(label, "KỲ") {
			return
		}
		field, ok := TenorFromLabel(label)
		if !ok {
			return
		}
		for i := 2; i < cols.Length(); i++ {
			cell := cellText(cols.Eq(i))
			if acbJunkCells[cell] {
				continue
			}
			if v, parsed := record.ParseRate(cell); parsed {
				_ = cand.Set(field, v)
			}
			break
		}
	})

	if cand.Len() == 0 {
		return nil, nil
	}
	return cand, nil
}

// parseVietinBank matches "N tháng ... 5,20" patterns against the page text.
// VietinBank renders its rate table server side but with unstable markup,
// so the text sweep is the structured strategy for this source.
func parseVietinBank(doc *goquery.Document, req Request) (*record.Candidate, error) {
	cand := record.New(req.Kind, req.SourceID, req.Date)
	scanTenorText(cand, VisibleText(doc))
	if cand.Len() == 0 {
		return nil, nil
	}
	return cand, nil
}

// parseVietcombank walks every table for tenor-labeled rows and falls back
// to the text sweep when the rendered markup carries no usable table.
func parseVietcombank(doc *goquery.Document, req Request) (*record.Candidate, error) {
	cand := record.New(req.Kind, req.SourceID, req.Date)

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td, th")
		if cols.Length() < 2 {
			return
		}
		field, ok := TenorFromLabel(cellText(cols.Eq(0)))
		if !ok {
			return
		}
		if _, set := cand.Get(field); set {
			return
		}
		for i := 1; i < cols.Length(); i++ {
			v, parsed := record.ParseRate(cellText(cols.Eq(i)))
			if parsed && v > req.Kind.Min && v <= req.Kind.Max {
				_ = cand.Set(field, v)
				break
			}
		}
	})

	if cand.Len() == 0 {
		scanTenorText(cand, VisibleText(doc))
	}
	if cand.Len() == 0 {
		return nil, nil
	}
	return cand, nil
}
