package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vietdataverse/fincrawl/internal/record"
)

// FocusCurrencies are the currencies worth storing; exotic low-volume codes
// in the bank feeds are skipped.
var FocusCurrencies = map[string]bool{
	"USD": true, "EUR": true, "JPY": true, "GBP": true, "CNY": true,
	"AUD": true, "SGD": true, "KRW": true, "THB": true, "CAD": true,
	"CHF": true, "HKD": true, "NZD": true, "TWD": true, "MYR": true,
}

// FXQuote is one currency's quote from a bank feed, VND per unit.
type FXQuote struct {
	Currency    string
	BuyCash     *float64
	BuyTransfer *float64
	Sell        *float64
}

// Candidate shapes the quote as an exchange-rate record so it can pass the
// same validation gate as crawled records. SubKey carries the currency.
func (q FXQuote) Candidate(bank string, date time.Time) *record.Candidate {
	c := record.New(record.ExchangeRate, bank, date)
	c.SubKey = q.Currency
	if q.BuyCash != nil {
		_ = c.Set(record.FieldBuyCash, *q.BuyCash)
	}
	if q.BuyTransfer != nil {
		_ = c.Set(record.FieldBuyTransfer, *q.BuyTransfer)
	}
	if q.Sell != nil {
		_ = c.Set(record.FieldSellRate, *q.Sell)
	}
	return c
}

type vcbRatesReply struct {
	Date string `json:"Date"`
	Data []struct {
		CurrencyCode string `json:"currencyCode"`
		Cash         string `json:"cash"`
		Transfer     string `json:"transfer"`
		Sell         string `json:"sell"`
	} `json:"Data"`
}

// parseAPINumber reads the comma-grouped numbers the VCB feed uses
// ("25,069.00"). Empty and zero values mean "not quoted".
func parseAPINumber(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v == 0 {
		return nil
	}
	return &v
}

// ParseVCBExchangeRates decodes the Vietcombank exchangerates API reply.
// The returned date is the feed's own date, which may differ from the one
// requested on non-trading days.
func ParseVCBExchangeRates(body string, requested time.Time) ([]FXQuote, time.Time, error) {
	var reply vcbRatesReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, time.Time{}, fmt.Errorf("vcb rates reply: %w", err)
	}

	date := requested
	if len(reply.Date) >= 10 {
		if d, err := time.Parse("2006-01-02", reply.Date[:10]); err == nil {
			date = d
		}
	}

	var quotes []FXQuote
	for _, item := range reply.Data {
		currency := strings.ToUpper(strings.TrimSpace(item.CurrencyCode))
		if !FocusCurrencies[currency] {
			continue
		}
		q := FXQuote{
			Currency:    currency,
			BuyCash:     parseAPINumber(item.Cash),
			BuyTransfer: parseAPINumber(item.Transfer),
			Sell:        parseAPINumber(item.Sell),
		}
		if q.BuyTransfer == nil && q.Sell == nil {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, date, nil
}

type vnappmobKeyReply struct {
	Results string `json:"results"`
}

// ParseVNAppMobKey reads the API-key grant reply.
func ParseVNAppMobKey(body string) (string, error) {
	var reply vnappmobKeyReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return "", fmt.Errorf("vnappmob key reply: %w", err)
	}
	if reply.Results == "" {
		return "", fmt.Errorf("vnappmob key reply: empty key")
	}
	return reply.Results, nil
}

type vnappmobRatesReply struct {
	Results []struct {
		Currency    string  `json:"currency"`
		BuyCash     float64 `json:"buy_cash"`
		BuyTransfer float64 `json:"buy_transfer"`
		Sell        float64 `json:"sell"`
	} `json:"results"`
}

// NormalizeCurrency strips the annotations VNAppMob attaches to currency
// codes: "USD (50,100)" becomes "USD".
func NormalizeCurrency(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.SplitN(raw, "(", 2)[0]
	raw = strings.SplitN(raw, " ", 2)[0]
	return strings.ToUpper(raw)
}

// ParseVNAppMobRates decodes a VNAppMob bank feed. Duplicate currency rows
// collapse to the one with the highest transfer rate, matching how the feed
// repeats promotional tiers.
func ParseVNAppMobRates(body string) ([]FXQuote, error) {
	var reply vnappmobRatesReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("vnappmob rates reply: %w", err)
	}

	positive := func(v float64) *float64 {
		if v > 0 {
			return &v
		}
		return nil
	}

	best := make(map[string]FXQuote)
	var order []string
	for _, item := range reply.Results {
		currency := NormalizeCurrency(item.Currency)
		if !FocusCurrencies[currency] {
			continue
		}
		if prev, seen := best[currency]; seen {
			prevTransfer := 0.0
			if prev.BuyTransfer != nil {
				prevTransfer = *prev.BuyTransfer
			}
			if item.BuyTransfer <= prevTransfer {
				continue
			}
		} else {
			order = append(order, currency)
		}
		best[currency] = FXQuote{
			Currency:    currency,
			BuyCash:     positive(item.BuyCash),
			BuyTransfer: positive(item.BuyTransfer),
			Sell:        positive(item.Sell),
		}
	}

	quotes := make([]FXQuote, 0, len(order))
	for _, currency := range order {
		quotes = append(quotes, best[currency])
	}
	return quotes, nil
}
