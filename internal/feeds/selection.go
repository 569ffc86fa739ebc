package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vietdataverse/fincrawl/internal/llm"
	"github.com/vietdataverse/fincrawl/internal/schemas"
)

// maxSelectionInput caps how many articles go into one selection prompt.
const maxSelectionInput = 30

// selectionCount is how many items the model must pick.
const selectionCount = 5

// SelectedItem is one model-chosen article with its bilingual rendering.
// URL, source and date always come from the RSS original, never the model.
type SelectedItem struct {
	TitleVI     string
	SummaryVI   string
	TitleEN     string
	SummaryEN   string
	Market      string
	ImpactScore float64

	URL        string
	Source     string
	SourceDate string
}

// Selector picks the highest-impact articles with one generative call.
type Selector struct {
	client llm.Client
	log    *logrus.Entry
}

func NewSelector(client llm.Client, log *logrus.Entry) *Selector {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Selector{client: client, log: log}
}

type pulseReply struct {
	Items []struct {
		Index       int     `json:"index"`
		TitleVI     string  `json:"title_vi"`
		SummaryVI   string  `json:"summary_vi"`
		TitleEN     string  `json:"title_en"`
		SummaryEN   string  `json:"summary_en"`
		Market      string  `json:"affected_market"`
		ImpactScore float64 `json:"impact_score"`
	} `json:"items"`
}

// Select sends up to 30 articles to the model and merges its picks with the
// originals. Out-of-range indices are dropped with a warning; a count other
// than five is logged but the valid picks still flow through.
func (s *Selector) Select(ctx context.Context, articles []Article) ([]SelectedItem, error) {
	if s.client == nil {
		return nil, fmt.Errorf("selection requires a generative client")
	}
	if len(articles) == 0 {
		return nil, nil
	}
	if len(articles) > maxSelectionInput {
		articles = articles[:maxSelectionInput]
	}

	reply, err := s.client.GenerateJSON(ctx, selectionPrompt(articles), llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("selection: %w", err)
	}
	if err := schemas.ValidateString(schemas.PulseReply, reply); err != nil {
		return nil, fmt.Errorf("selection reply rejected: %w", err)
	}

	var parsed pulseReply
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return nil, fmt.Errorf("selection reply not JSON: %w", err)
	}
	if len(parsed.Items) != selectionCount {
		s.log.WithField("count", len(parsed.Items)).Warn("selection returned unexpected item count")
	}

	var out []SelectedItem
	for _, it := range parsed.Items {
		if it.Index < 0 || it.Index >= len(articles) {
			s.log.WithField("index", it.Index).Warn("selection index out of range, dropping")
			continue
		}
		original := articles[it.Index]
		out = append(out, SelectedItem{
			TitleVI:     it.TitleVI,
			SummaryVI:   it.SummaryVI,
			TitleEN:     it.TitleEN,
			SummaryEN:   it.SummaryEN,
			Market:      it.Market,
			ImpactScore: it.ImpactScore,
			URL:         original.URL,
			Source:      original.Source,
			SourceDate:  original.Published.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out, nil
}

func selectionPrompt(articles []Article) string {
	var body strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&body, "[%d] Title: %s\nSummary: %s\nSource: %s\nURL: %s\nPublished: %s\n---\n",
			i, a.Title, a.Summary, a.Source, a.URL, a.Published.Format("2006-01-02T15:04:05Z07:00"))
	}

	return fmt.Sprintf(`You are a global macro financial research assistant.

From the following %d real news articles, select EXACTLY %d that are MOST LIKELY to have HIGH IMPACT on Vietnam's financial market.

Vietnam market scope:
- VN-Index / equities
- Banking system
- Gold & precious metals
- Real estate
- FX / interest rates / commodities
- Trade & geopolitics affecting ASEAN/Vietnam

ARTICLES:
%s
For EACH selected item, return:
- index: the article index number [0-%d]
- title_vi: Vietnamese translation of the title
- summary_vi: 2-sentence Vietnamese summary focusing on impact to Vietnam market
- title_en: English title (keep original or slightly edited for clarity)
- summary_en: 2-sentence English summary focusing on impact to Vietnam market
- affected_market: one of (VNINDEX, GOLD, REAL_ESTATE, BANKING, FX)
- impact_score: number from -1.0 to 1.0 (negative = bearish, positive = bullish), absolute value >= 0.5

Return ONLY valid JSON (no markdown code blocks):

{
  "items": [ ... exactly %d items ... ]
}`, len(articles), selectionCount, body.String(), len(articles)-1, selectionCount)
}
