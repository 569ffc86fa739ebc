package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vietdataverse/fincrawl/internal/record"
)

// ParseGold24h reads the daily gold table on 24h.com.vn. Brand rows carry an
// h2 in the first cell and span.fixW prices in thousands of VND; prices are
// scaled back to VND here.
func ParseGold24h(doc *goquery.Document, date time.Time) []*record.Candidate {
	var out []*record.Candidate

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 3 {
			return
		}
		brand := cellText(cols.Eq(0).Find("h2"))
		if brand == "" {
			return
		}
		buySpan := cols.Eq(1).Find("span.fixW")
		sellSpan := cols.Eq(2).Find("span.fixW")
		if buySpan.Length() == 0 || sellSpan.Length() == 0 {
			return
		}
		buy, okBuy := record.ParseVND(cellText(buySpan))
		sell, okSell := record.ParseVND(cellText(sellSpan))
		if !okBuy || !okSell {
			return
		}

		c := record.New(record.MetalPrice, "gold24h", date)
		c.SubKey = brand
		_ = c.Set(record.FieldBuyPrice, buy*1000)
		_ = c.Set(record.FieldSellPrice, sell*1000)
		out = append(out, c)
	})
	return out
}

type giabacChartReply struct {
	Dates          []string  `json:"Dates"`
	LastBuyPrices  []float64 `json:"LastBuyPrices"`
	LastSellPrices []float64 `json:"LastSellPrices"`
}

// ParseGiabacChart reads the giabac.vn chart API, a week of daily buy/sell
// series, and returns the most recent day. This is the cheap path tried
// before rendering the price board in a browser.
func ParseGiabacChart(body string) (*record.Candidate, error) {
	var reply giabacChartReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("giabac chart reply: %w", err)
	}
	n := len(reply.Dates)
	if n == 0 || len(reply.LastBuyPrices) != n || len(reply.LastSellPrices) != n {
		return nil, nil
	}

	last := 0
	lastDate := time.Time{}
	for i, raw := range reply.Dates {
		d, err := time.Parse("2006-01-02", raw[:min(10, len(raw))])
		if err != nil {
			continue
		}
		if d.After(lastDate) {
			lastDate, last = d, i
		}
	}
	if lastDate.IsZero() {
		return nil, nil
	}

	c := record.New(record.MetalPrice, "giabac", lastDate)
	c.SubKey = "1 lượng"
	_ = c.Set(record.FieldBuyPrice, reply.LastBuyPrices[last])
	_ = c.Set(record.FieldSellPrice, reply.LastSellPrices[last])
	return c, nil
}

// ParseGiabacSilver reads the Phu Quy silver board on giabac.vn: the
// "1 lượng" row inside #priceTable, buy in the third cell, sell in the
// fourth. Returns nil when the row is absent.
func ParseGiabacSilver(doc *goquery.Document, date time.Time) *record.Candidate {
	var cand *record.Candidate

	doc.Find("#priceTable table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cols := row.Find("td")
		if cols.Length() < 4 {
			return true
		}
		if !strings.Contains(strings.ToLower(cellText(cols.Eq(0))), "1 lượng") {
			return true
		}
		buy, okBuy := record.ParseVND(cellText(cols.Eq(2)))
		sell, okSell := record.ParseVND(cellText(cols.Eq(3)))
		if !okBuy || !okSell {
			return true
		}

		c := record.New(record.MetalPrice, "giabac", date)
		c.SubKey = "1 lượng"
		_ = c.Set(record.FieldBuyPrice, buy)
		_ = c.Set(record.FieldSellPrice, sell)
		cand = c
		return false
	})
	return cand
}
