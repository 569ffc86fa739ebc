// Package record defines the candidate records produced by the extraction
// tiers and the validation gate they all pass through before persistence.
package record

import (
	"fmt"
	"sort"
	"time"
)

// Tier identifies which extraction strategy produced a candidate.
type Tier int

// Extraction tiers, tried strictly in order.
const (
	TierStructured Tier = iota + 1
	TierHeuristic
	TierGenerative
)

func (t Tier) String() string {
	switch t {
	case TierStructured:
		return "structured"
	case TierHeuristic:
		return "heuristic"
	case TierGenerative:
		return "generative"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Field is one entry in a record kind's closed vocabulary.
type Field string

// Tenor fields for deposit-rate records.
const (
	TermNoTerm Field = "term_noterm"
	Term1M     Field = "term_1m"
	Term2M     Field = "term_2m"
	Term3M     Field = "term_3m"
	Term6M     Field = "term_6m"
	Term9M     Field = "term_9m"
	Term12M    Field = "term_12m"
	Term13M    Field = "term_13m"
	Term15M    Field = "term_15m"
	Term18M    Field = "term_18m"
	Term24M    Field = "term_24m"
	Term36M    Field = "term_36m"
)

// Fields for price and FX records.
const (
	FieldCentralRate Field = "usd_vnd_rate"
	FieldBuyPrice    Field = "buy_price"
	FieldSellPrice   Field = "sell_price"
	FieldBuyCash     Field = "buy_cash"
	FieldBuyTransfer Field = "buy_transfer"
	FieldSellRate    Field = "sell_rate"
)

// TenorFields lists the deposit-rate vocabulary in persistence order.
var TenorFields = []Field{
	TermNoTerm, Term1M, Term2M, Term3M, Term6M, Term9M,
	Term12M, Term13M, Term15M, Term18M, Term24M, Term36M,
}

// Kind declares the vocabulary, the accepted numeric range (half-open,
// (Min, Max]) and the minimum populated-field count for one record family.
type Kind struct {
	Name      string
	Fields    []Field
	Min       float64
	Max       float64
	MinFields int
}

// Record kinds persisted by the pipeline.
var (
	// DepositRate covers bank term-deposit percentages.
	DepositRate = Kind{
		Name:      "deposit_rate",
		Fields:    TenorFields,
		Min:       0.1,
		Max:       20.0,
		MinFields: 3,
	}

	// CentralRate covers the SBV USD/VND central exchange rate.
	CentralRate = Kind{
		Name:      "central_rate",
		Fields:    []Field{FieldCentralRate},
		Min:       20000,
		Max:       30000,
		MinFields: 1,
	}

	// ExchangeRate covers commercial-bank FX quotes (VND per unit).
	ExchangeRate = Kind{
		Name:      "exchange_rate",
		Fields:    []Field{FieldBuyCash, FieldBuyTransfer, FieldSellRate},
		Min:       1,
		Max:       1e9,
		MinFields: 1,
	}

	// MetalPrice covers gold and silver buy/sell quotes in VND.
	MetalPrice = Kind{
		Name:      "metal_price",
		Fields:    []Field{FieldBuyPrice, FieldSellPrice},
		Min:       1000,
		Max:       1e12,
		MinFields: 1,
	}
)

func (k Kind) allows(f Field) bool {
	for _, kf := range k.Fields {
		if kf == f {
			return true
		}
	}
	return false
}

// Candidate is a record extracted by one tier but not yet validated or
// persisted. Values are always numeric; the vocabulary is closed per kind.
type Candidate struct {
	Kind   Kind
	Source string
	Date   time.Time
	Tier   Tier

	// SubKey disambiguates records sharing source and date, e.g. the
	// currency code of an FX quote or the gold brand of a price row.
	SubKey string

	// DocumentNo carries the issuing document reference on central-rate
	// records; empty everywhere else. Not part of the numeric vocabulary.
	DocumentNo string

	values map[Field]float64
}

// New returns an empty candidate for the given kind.
func New(kind Kind, source string, date time.Time) *Candidate {
	return &Candidate{
		Kind:   kind,
		Source: source,
		Date:   date,
		values: make(map[Field]float64),
	}
}

// Set stores a value, rejecting fields outside the kind's vocabulary.
func (c *Candidate) Set(f Field, v float64) error {
	if !c.Kind.allows(f) {
		return fmt.Errorf("field %q not in %s vocabulary", f, c.Kind.Name)
	}
	c.values[f] = v
	return nil
}

// Get returns the value for a field and whether it is populated.
func (c *Candidate) Get(f Field) (float64, bool) {
	v, ok := c.values[f]
	return v, ok
}

// Len reports how many vocabulary fields are populated.
func (c *Candidate) Len() int {
	return len(c.values)
}

// PopulatedFields returns the populated fields in vocabulary order.
func (c *Candidate) PopulatedFields() []Field {
	out := make([]Field, 0, len(c.values))
	for _, f := range c.Kind.Fields {
		if _, ok := c.values[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Values returns a copy of the populated field map.
func (c *Candidate) Values() map[Field]float64 {
	out := make(map[Field]float64, len(c.values))
	for f, v := range c.values {
		out[f] = v
	}
	return out
}

// Summary renders populated fields as "field=value" pairs for logging.
func (c *Candidate) Summary() string {
	fields := c.PopulatedFields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%g", f, c.values[f]))
	}
	sort.Strings(parts)
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
