package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vietdataverse/fincrawl/internal/llm"
	"github.com/vietdataverse/fincrawl/internal/record"
	"github.com/vietdataverse/fincrawl/internal/schemas"
)

// maxPromptHTML caps how much page content goes into a generative prompt.
const maxPromptHTML = 10000

// GenerativeTier extracts with a generative model when both deterministic
// tiers have missed. A nil client means the tier always misses, which keeps
// crawls usable without an API key.
type GenerativeTier struct {
	client llm.Client
}

func NewGenerativeTier(client llm.Client) *GenerativeTier {
	return &GenerativeTier{client: client}
}

func (t *GenerativeTier) Name() string { return "generative" }

func (t *GenerativeTier) Extract(ctx context.Context, req Request) (*record.Candidate, error) {
	if t.client == nil {
		return nil, nil
	}

	var prompt string
	switch req.Kind.Name {
	case record.CentralRate.Name:
		prompt = centralRatePrompt(req.Body)
	case record.DepositRate.Name:
		prompt = depositRatePrompt(req.SourceID, req.Body)
	default:
		return nil, nil
	}

	reply, err := t.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("generative extraction: %w", err)
	}

	switch req.Kind.Name {
	case record.CentralRate.Name:
		return parseCentralRateReply(reply, req)
	default:
		return parseRateReply(reply, req)
	}
}

// promptContent truncates a page body for the prompt, preferring the best
// scoring table so the model sees the data and not the navigation chrome.
func promptContent(body string) string {
	if doc, err := ParseHTML(body); err == nil {
		best := ""
		bestScore := 0
		doc.Find("table").Each(func(_ int, table *goquery.Selection) {
			if s := scoreTable(table); s > bestScore {
				if html, err := goquery.OuterHtml(table); err == nil {
					best, bestScore = html, s
				}
			}
		})
		if bestScore >= minTableScore && best != "" {
			body = best
		}
	}
	// Truncate on a rune boundary; the pages are full of multi-byte
	// Vietnamese text.
	if runes := []rune(body); len(runes) > maxPromptHTML {
		return string(runes[:maxPromptHTML])
	}
	return body
}

func depositRatePrompt(sourceID, body string) string {
	keys := make([]string, len(record.TenorFields))
	for i, f := range record.TenorFields {
		keys[i] = fmt.Sprintf("%q: <rate as float or null>", f)
	}
	return fmt.Sprintf(`Extract VND personal term deposit interest rates (%%/year, end-of-term payout) from this bank webpage (bank: %s).
Return ONLY a valid JSON object (no markdown) with this structure:
{
  %s
}
Use null for tenors not shown on the page. Rates use Vietnamese decimal commas on the page; return plain floats.

HTML:
%s`, strings.ToUpper(sourceID), strings.Join(keys, ",\n  "), promptContent(body))
}

func centralRatePrompt(body string) string {
	return fmt.Sprintf(`Extract the SBV (State Bank of Vietnam) central exchange rate for USD/VND from this webpage.
Return ONLY a valid JSON object (no markdown) with this structure:
{
  "usd_vnd_rate": <rate as float, e.g. 25069.0>,
  "issue_date": "<date in YYYY-MM-DD format or null>",
  "document_no": "<document number string or null>"
}
The rate should be the number of VND per 1 USD.

HTML:
%s`, promptContent(body))
}

func parseRateReply(reply string, req Request) (*record.Candidate, error) {
	if err := schemas.ValidateString(schemas.RateReply, reply); err != nil {
		return nil, fmt.Errorf("rate reply rejected: %w", err)
	}
	var parsed map[string]*float64
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return nil, fmt.Errorf("rate reply not JSON: %w", err)
	}

	cand := record.New(req.Kind, req.SourceID, req.Date)
	cand.Tier = record.TierGenerative
	for _, f := range record.TenorFields {
		if v := parsed[string(f)]; v != nil {
			_ = cand.Set(f, *v)
		}
	}
	if cand.Len() == 0 {
		return nil, nil
	}
	return cand, nil
}

type centralRateReply struct {
	Rate       *float64 `json:"usd_vnd_rate"`
	IssueDate  *string  `json:"issue_date"`
	DocumentNo *string  `json:"document_no"`
}

func parseCentralRateReply(reply string, req Request) (*record.Candidate, error) {
	if err := schemas.ValidateString(schemas.CentralRateReply, reply); err != nil {
		return nil, fmt.Errorf("central rate reply rejected: %w", err)
	}
	var parsed centralRateReply
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return nil, fmt.Errorf("central rate reply not JSON: %w", err)
	}
	if parsed.Rate == nil {
		return nil, nil
	}

	cand := record.New(req.Kind, req.SourceID, req.Date)
	cand.Tier = record.TierGenerative
	_ = cand.Set(record.FieldCentralRate, *parsed.Rate)
	if parsed.DocumentNo != nil {
		cand.DocumentNo = *parsed.DocumentNo
	}
	if parsed.IssueDate != nil {
		if d, err := time.Parse("2006-01-02", *parsed.IssueDate); err == nil {
			cand.Date = d
		}
	}
	return cand, nil
}
