package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const interbankReply = `{
  "items": [
    {
      "contentFields": [
        {"name": "ngayApDung", "contentFieldValue": {"data": "2026-02-16T17:00:00Z"}},
        {"name": "laiSuatThiTruongNganHangs", "contentFieldValue": {"data": ""}, "nestedContentFields": [
          {"name": "thoihan", "contentFieldValue": {"data": "Qua đêm"}},
          {"name": "laiSuatBQLienNganHang", "contentFieldValue": {"data": "4,12"}},
          {"name": "doanhSo", "contentFieldValue": {"data": "398.512"}}
        ]},
        {"name": "laiSuatThiTruongNganHangs", "contentFieldValue": {"data": ""}, "nestedContentFields": [
          {"name": "thoihan", "contentFieldValue": {"data": "1 Tuần"}},
          {"name": "laiSuatBQLienNganHang", "contentFieldValue": {"data": "4,35"}},
          {"name": "doanhSo", "contentFieldValue": {"data": ""}}
        ]},
        {"name": "laiSuatThiTruongNganHangs", "contentFieldValue": {"data": ""}, "nestedContentFields": [
          {"name": "thoihan", "contentFieldValue": {"data": "12 Tháng"}},
          {"name": "laiSuatBQLienNganHang", "contentFieldValue": {"data": "5,00"}}
        ]}
      ]
    }
  ]
}`

func TestParseSBVInterbank(t *testing.T) {
	obs, err := ParseSBVInterbank(interbankReply)
	require.NoError(t, err)
	require.NotNil(t, obs)

	assert.Equal(t, 17, obs.Date.Day(), "UTC date shifts into the Vietnam day")
	require.Len(t, obs.Terms, 2, "tenors outside the column map are dropped")

	overnight := obs.Terms[0]
	assert.Equal(t, "quadem", overnight.Column)
	require.NotNil(t, overnight.Rate)
	assert.Equal(t, 4.12, *overnight.Rate)
	require.NotNil(t, overnight.Volume)
	assert.Equal(t, 398512.0, *overnight.Volume, "volumes use the dot thousands separator")

	week := obs.Terms[1]
	assert.Equal(t, "1w", week.Column)
	assert.Nil(t, week.Volume, "blank volumes stay nil")
}

func TestParseSBVInterbankEmptyItems(t *testing.T) {
	obs, err := ParseSBVInterbank(`{"items": []}`)
	require.NoError(t, err)
	assert.Nil(t, obs)
}

func TestParseSBVInterbankNoDate(t *testing.T) {
	obs, err := ParseSBVInterbank(`{"items": [{"contentFields": [{"name": "ngayApDung", "contentFieldValue": {"data": "not-a-date"}}]}]}`)
	require.NoError(t, err)
	assert.Nil(t, obs)
}

func TestParseSBVPolicyRates(t *testing.T) {
	page := `<html><body><table>
<tr><td>Lãi suất tái cấp vốn</td><td>4,50%/năm</td></tr>
<tr><td>Lãi suất tái chiết khấu</td><td>3,00%/năm</td></tr>
<tr><td>Lãi suất cho vay qua đêm</td><td>5,00%/năm</td></tr>
</table></body></html>`
	doc, err := ParseHTML(page)
	require.NoError(t, err)

	rates := ParseSBVPolicyRates(doc)
	require.NotNil(t, rates.Refinancing)
	assert.Equal(t, 4.5, *rates.Refinancing)
	require.NotNil(t, rates.Rediscount)
	assert.Equal(t, 3.0, *rates.Rediscount)
}

func TestParseSBVPolicyRatesAbsent(t *testing.T) {
	doc, err := ParseHTML(`<html><body><p>Không có dữ liệu</p></body></html>`)
	require.NoError(t, err)

	rates := ParseSBVPolicyRates(doc)
	assert.Nil(t, rates.Rediscount)
	assert.Nil(t, rates.Refinancing)
}
