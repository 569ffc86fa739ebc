package extract

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/vietdataverse/fincrawl/internal/record"
)

// ParserFunc is a tier-1 parser tuned to one source's known layout.
type ParserFunc func(doc *goquery.Document, req Request) (*record.Candidate, error)

// StructuredTier dispatches to per-source parsers. Sources without a
// registered parser always miss here and fall to the heuristic tier.
type StructuredTier struct {
	parsers map[string]ParserFunc
}

// NewStructuredTier returns a tier with the built-in source parsers
// registered.
func NewStructuredTier() *StructuredTier {
	t := &StructuredTier{parsers: make(map[string]ParserFunc)}
	t.Register("ACB", parseACB)
	t.Register("CTG", parseVietinBank)
	t.Register("VCB", parseVietcombank)
	t.Register("SBV", parseSBVCentralRate)
	return t
}

// Register binds a parser to a source ID, replacing any previous one.
func (t *StructuredTier) Register(sourceID string, p ParserFunc) {
	t.parsers[sourceID] = p
}

func (t *StructuredTier) Name() string { return "structured" }

func (t *StructuredTier) Extract(_ context.Context, req Request) (*record.Candidate, error) {
	p, ok := t.parsers[req.SourceID]
	if !ok {
		return nil, nil
	}
	doc, err := ParseHTML(req.Body)
	if err != nil {
		return nil, err
	}
	cand, err := p(doc, req)
	if err != nil || cand == nil {
		return cand, err
	}
	cand.Tier = record.TierStructured
	return cand, nil
}
