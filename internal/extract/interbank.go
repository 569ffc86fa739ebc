package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vietdataverse/fincrawl/internal/record"
)

// interbankTermColumns maps the Vietnamese tenor labels in the SBV headless
// feed to history-table column suffixes.
var interbankTermColumns = map[string]string{
	"Qua đêm": "quadem",
	"1 Tuần":  "1w",
	"2 Tuần":  "2w",
	"1 Tháng": "1m",
	"3 Tháng": "3m",
	"6 Tháng": "6m",
	"9 Tháng": "9m",
}

// InterbankTerm is one tenor observation from the SBV interbank feed.
type InterbankTerm struct {
	Column string
	Rate   *float64
	Volume *float64
}

// InterbankObservation is the daily interbank market snapshot.
type InterbankObservation struct {
	Date  time.Time
	Terms []InterbankTerm
}

type sbvContentField struct {
	Name              string            `json:"name"`
	ContentFieldValue struct {
		Data string `json:"data"`
	} `json:"contentFieldValue"`
	NestedContentFields []sbvContentField `json:"nestedContentFields"`
}

type sbvHeadlessReply struct {
	Items []struct {
		ContentFields []sbvContentField `json:"contentFields"`
	} `json:"items"`
}

func sbvFieldFloat(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, ok := record.ParseDecimal(s)
	if !ok {
		return nil
	}
	return &v
}

// ParseSBVInterbank decodes the SBV headless-delivery interbank feed. The
// effective date comes from the ngayApDung field shifted to Vietnam time;
// each laiSuatThiTruongNganHangs group carries one tenor's rate and volume.
func ParseSBVInterbank(body string) (*InterbankObservation, error) {
	var reply sbvHeadlessReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("sbv interbank reply: %w", err)
	}
	if len(reply.Items) == 0 {
		return nil, nil
	}

	obs := &InterbankObservation{}
	for _, field := range reply.Items[0].ContentFields {
		switch field.Name {
		case "ngayApDung":
			t, err := time.Parse(time.RFC3339, field.ContentFieldValue.Data)
			if err != nil {
				continue
			}
			obs.Date = t.Add(7 * time.Hour)
		case "laiSuatThiTruongNganHangs":
			var term InterbankTerm
			var label string
			for _, nested := range field.NestedContentFields {
				data := nested.ContentFieldValue.Data
				switch nested.Name {
				case "thoihan":
					label = data
				case "laiSuatBQLienNganHang":
					term.Rate = sbvFieldFloat(data)
				case "doanhSo":
					term.Volume = sbvFieldFloat(data)
				}
			}
			if col, ok := interbankTermColumns[label]; ok {
				term.Column = col
				obs.Terms = append(obs.Terms, term)
			}
		}
	}

	if obs.Date.IsZero() {
		return nil, nil
	}
	return obs, nil
}

// PolicyRates are the SBV administered rates scraped from the rates page.
type PolicyRates struct {
	Rediscount  *float64
	Refinancing *float64
}

// ParseSBVPolicyRates scans every table for the rediscount and refinancing
// rate rows, matched by their Vietnamese or English labels.
func ParseSBVPolicyRates(doc *goquery.Document) PolicyRates {
	var rates PolicyRates

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		label := strings.ToLower(cellText(cols.Eq(0)))
		v, ok := record.ParseRate(cellText(cols.Eq(1)))
		if !ok {
			return
		}
		if strings.Contains(label, "tái chiết khấu") || strings.Contains(label, "rediscount") {
			rates.Rediscount = &v
		}
		if strings.Contains(label, "tái cấp vốn") || strings.Contains(label, "refinancing") {
			rates.Refinancing = &v
		}
	})
	return rates
}
