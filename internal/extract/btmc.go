package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vietdataverse/fincrawl/internal/record"
)

// btmcTypeMap maps BTMC product names to the type labels stored in the gold
// history table. The prefix keeps BTMC rows distinct from the 24h brands.
var btmcTypeMap = []struct {
	Prefix string
	Type   string
}{
	{"VÀNG MIẾNG SJC", "BTMC SJC"},
	{"VÀNG MIẾNG VRTL", "BTMC VRTL"},
	{"NHẪN TRÒN TRƠN", "BTMC Nhẫn Trơn"},
	{"VÀNG NGUYÊN LIỆU", "BTMC Nguyên Liệu"},
	{"TRANG SỨC VÀNG RỒNG THĂNG LONG 999.9", "BTMC RTL 999.9"},
	{"TRANG SỨC VÀNG RỒNG THĂNG LONG 99.9", "BTMC RTL 99.9"},
	{"BẢN VÀNG ĐẮC LỘC", "BTMC Đắc Lộc"},
	{"QUÀ MỪNG BẢN VỊ VÀNG", "BTMC Quà Mừng"},
}

func btmcCleanType(rawName string) string {
	upper := strings.ToUpper(strings.TrimSpace(rawName))
	for _, m := range btmcTypeMap {
		if strings.HasPrefix(upper, strings.ToUpper(m.Prefix)) {
			return m.Type
		}
	}
	if len(rawName) > 50 {
		rawName = rawName[:50]
	}
	return "BTMC " + rawName
}

type btmcReply struct {
	DataList struct {
		Data []map[string]string `json:"Data"`
	} `json:"DataList"`
}

// ParseBTMC decodes the BTMC price API. Each row's keys are suffixed with
// its own row index ("@n_3", "@pb_3"); the product timestamp overrides the
// crawl date when it parses.
func ParseBTMC(body string, fallbackDate time.Time) ([]*record.Candidate, error) {
	var reply btmcReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("btmc reply: %w", err)
	}

	var out []*record.Candidate
	for _, row := range reply.DataList.Data {
		idx := row["@row"]
		if idx == "" {
			continue
		}
		rawName := strings.TrimSpace(row["@n_"+idx])
		if rawName == "" {
			continue
		}

		buy, errBuy := strconv.ParseFloat(row["@pb_"+idx], 64)
		sell, errSell := strconv.ParseFloat(row["@ps_"+idx], 64)
		if errBuy != nil || errSell != nil {
			continue
		}
		if buy == 0 && sell == 0 {
			continue
		}

		date := fallbackDate
		if ts := row["@d_"+idx]; ts != "" {
			if t, err := time.Parse("02/01/2006 15:04", ts); err == nil {
				date = t
			}
		}

		c := record.New(record.MetalPrice, "btmc", date)
		c.SubKey = btmcCleanType(rawName)
		if buy > 0 {
			_ = c.Set(record.FieldBuyPrice, buy)
		}
		if sell > 0 {
			_ = c.Set(record.FieldSellPrice, sell)
		}
		out = append(out, c)
	}
	return out, nil
}
