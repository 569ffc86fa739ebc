package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vietdataverse/fincrawl/internal/record"
)

// minTableScore is the acceptance bar for the table scorer. A table with a
// tenor label and a rate cell clears it; pure layout tables do not.
const minTableScore = 5

var (
	rateCellRe = regexp.MustCompile(`^\*?\d{1,2}[.,]\d{1,2}\s*%?$`)

	// heuristicKeywords mark cells that belong to a rate table even when
	// they carry no number.
	heuristicKeywords = []string{"lãi suất", "kỳ hạn", "tháng", "%/năm"}

	centralRatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Đô la Mỹ[^\d]*([\d.,]+)\s*VND`),
		regexp.MustCompile(`(?i)USD[^\d]*(\d{2}[.,]\d{3})\s*VND`),
		regexp.MustCompile(`(?i)1\s*(?:Đô la Mỹ|USD)\s*=\s*([\d.,]+)`),
	}
)

// HeuristicTier extracts without source knowledge: deposit rates by scoring
// every table for rate-like shape, the central rate by sweeping the page
// text for USD/VND patterns.
type HeuristicTier struct{}

func NewHeuristicTier() *HeuristicTier { return &HeuristicTier{} }

func (t *HeuristicTier) Name() string { return "heuristic" }

func (t *HeuristicTier) Extract(_ context.Context, req Request) (*record.Candidate, error) {
	doc, err := ParseHTML(req.Body)
	if err != nil {
		return nil, err
	}
	switch req.Kind.Name {
	case record.CentralRate.Name:
		return sweepCentralRate(doc, req)
	default:
		return scoreAndParseTables(doc, req)
	}
}

// scoreTable rates how much a table looks like a deposit-rate table:
// tenor labels weigh most, rate-shaped cells next, domain keywords least.
func scoreTable(table *goquery.Selection) int {
	score := 0
	table.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		text := cellText(cell)
		if text == "" {
			return
		}
		if _, ok := TenorFromLabel(text); ok {
			score += 3
			return
		}
		if rateCellRe.MatchString(text) {
			score += 2
			return
		}
		lower := strings.ToLower(text)
		for _, kw := range heuristicKeywords {
			if strings.Contains(lower, kw) {
				score++
				break
			}
		}
	})
	return score
}

func scoreAndParseTables(doc *goquery.Document, req Request) (*record.Candidate, error) {
	type scored struct {
		table *goquery.Selection
		score int
	}
	var tables []scored
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if s := scoreTable(table); s >= minTableScore {
			tables = append(tables, scored{table, s})
		}
	})
	sort.SliceStable(tables, func(i, j int) bool { return tables[i].score > tables[j].score })

	for _, t := range tables {
		cand := parseRateTable(t.table, req)
		if cand == nil || record.Validate(cand) != nil {
			// A high score does not guarantee a complete record; keep
			// trying lower scoring tables before giving up.
			continue
		}
		return cand, nil
	}
	return nil, nil
}

// parseRateTable walks one table's rows, keeping the first in-range rate for
// each tenor label.
func parseRateTable(table *goquery.Selection, req Request) *record.Candidate {
	cand := record.New(req.Kind, req.SourceID, req.Date)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
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
		return nil
	}
	cand.Tier = record.TierHeuristic
	return cand
}

func sweepCentralRate(doc *goquery.Document, req Request) (*record.Candidate, error) {
	text := VisibleText(doc)
	cand := record.New(req.Kind, req.SourceID, req.Date)

	for _, re := range centralRatePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := record.ParseDecimal(m[1]); ok && v > req.Kind.Min && v <= req.Kind.Max {
			_ = cand.Set(record.FieldCentralRate, v)
			break
		}
	}
	if cand.Len() == 0 {
		return nil, nil
	}
	if d, ok := parseIssueDate(text); ok {
		cand.Date = d
	}
	cand.Tier = record.TierHeuristic
	return cand, nil
}
