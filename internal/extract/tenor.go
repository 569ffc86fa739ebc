package extract

import (
	"regexp"
	"strings"

	"github.com/vietdataverse/fincrawl/internal/record"
)

// shortTenorCodes maps the compact term codes some banks print ("1T", "12T")
// to tenor fields. 15-month deposits share the 15m bucket with their own code.
var shortTenorCodes = map[string]record.Field{
	"1T":  record.Term1M,
	"2T":  record.Term2M,
	"3T":  record.Term3M,
	"6T":  record.Term6M,
	"9T":  record.Term9M,
	"12T": record.Term12M,
	"13T": record.Term13M,
	"15T": record.Term15M,
	"18T": record.Term18M,
	"24T": record.Term24M,
	"36T": record.Term36M,
}

// monthTenors maps the month count in a "N tháng" label to its field.
var monthTenors = map[string]record.Field{
	"1":  record.Term1M,
	"2":  record.Term2M,
	"3":  record.Term3M,
	"6":  record.Term6M,
	"9":  record.Term9M,
	"12": record.Term12M,
	"13": record.Term13M,
	"15": record.Term15M,
	"18": record.Term18M,
	"24": record.Term24M,
	"36": record.Term36M,
}

var (
	monthLabelRe = regexp.MustCompile(`(?i)^(\d{1,2})\s*th[áa]ng`)
	noTermRe     = regexp.MustCompile(`(?i)kh[ôo]ng\s*k[ỳy]\s*h[ạa]n`)
)

// TenorFromLabel maps a raw row label to a tenor field. Returns false for
// headers and labels outside the vocabulary.
func TenorFromLabel(label string) (record.Field, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	upper := strings.ToUpper(label)

	if f, ok := shortTenorCodes[upper]; ok {
		return f, true
	}
	if noTermRe.MatchString(label) {
		return record.TermNoTerm, true
	}
	if m := monthLabelRe.FindStringSubmatch(label); m != nil {
		if f, ok := monthTenors[m[1]]; ok {
			return f, true
		}
	}
	return "", false
}

// tenorTextPatterns are the page-text fallbacks: "N tháng" followed by the
// first decimal number. Order follows the vocabulary so longer tenors never
// shadow shorter ones.
var tenorTextPatterns = []struct {
	Field record.Field
	Re    *regexp.Regexp
}{
	{record.TermNoTerm, regexp.MustCompile(`(?i)kh[ôo]ng\s*k[ỳy]\s*h[ạa]n[^\d]*(\d+[.,]\d+)`)},
	{record.Term1M, regexp.MustCompile(`(?i)\b1\s*th[áa]ng[^\d]*(\d+[.,]\d+)`)},
	{record.Term2M, regexp.MustCompile(`(?i)\b2\s*th[áa]ng[^\d]*(\d+[.,]\d+)`)},
	{record.Term3M, regexp.MustCompile(`(?i)\b3\s*th[áa]ng[^\d]*(\d+[.,]\d+)`)},
	{record.Term6M, regexp.MustCompile(`(?i)\b6\s*th[áa]ng[^\d]*(\d+[.,]\d+)`)},
	{record.Term9M, regexp.MustCompile(`(?i)\b9\s*th[áa]ng[^\d]*(\d+[.,]\d+)`)},
	{record.Term12M, regexp.MustCompile(`(?i)\b12\s*th[áa]ng[^\d]*(\d+[.,]\d+)`)},
	{record.Term13M, regexp.MustCompile(`(?i)\b13\s*th[áa]ng[^\d]*(\d+[.,]\d+)`)},
	{record.Term18M, regexp.MustCompile(`(?i)\b18\s*th[áa]ng[^\d]*(\d+[.,]\d+)`)},
	{record.Term24M, regexp.MustCompile(`(?i)\b24\s*th[áa]ng[^\d]*(\d+[.,]\d+)`)},
	{record.Term36M, regexp.MustCompile(`(?i)\b36\s*th[áa]ng[^\d]*(\d+[.,]\d+)`)},
}

// scanTenorText fills a candidate from "N tháng ... 5,20" patterns in page
// text. Values outside the kind range are simply not set; the validator is
// the one gate that decides acceptance.
func scanTenorText(c *record.Candidate, text string) {
	for _, p := range tenorTextPatterns {
		m := p.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := record.ParseRate(m[1]); ok && v > c.Kind.Min && v <= c.Kind.Max {
			_ = c.Set(p.Field, v)
		}
	}
}
