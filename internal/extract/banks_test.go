package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietdataverse/fincrawl/internal/record"
)

func TestParseVietinBank(t *testing.T) {
	page := `<html><body>
<div>Lãi suất tiền gửi cá nhân</div>
<div>1 tháng: 2,10 %/năm</div>
<div>3 tháng: 2,50 %/năm</div>
<div>6 tháng: 3,50 %/năm</div>
<div>12 tháng: 4,70 %/năm</div>
</body></html>`
	doc, err := ParseHTML(page)
	require.NoError(t, err)

	cand, err := parseVietinBank(doc, Request{SourceID: "CTG", Kind: record.DepositRate, Date: time.Now()})
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, 4, cand.Len())
}

func TestParseVietinBankMissesOnEmptyPage(t *testing.T) {
	doc, err := ParseHTML(`<html><body><p>Đang tải...</p></body></html>`)
	require.NoError(t, err)

	cand, err := parseVietinBank(doc, Request{SourceID: "CTG", Kind: record.DepositRate})
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestParseVietcombankTableWalk(t *testing.T) {
	page := `<html><body>
<table>
  <tr><th>Kỳ hạn</th><th>VND</th></tr>
  <tr><td>Không kỳ hạn</td><td>0,20</td></tr>
  <tr><td>1 tháng</td><td>1,60</td></tr>
  <tr><td>3 tháng</td><td>1,90</td></tr>
  <tr><td>12 tháng</td><td>4,60</td></tr>
</table>
</body></html>`
	doc, err := ParseHTML(page)
	require.NoError(t, err)

	cand, err := parseVietcombank(doc, Request{SourceID: "VCB", Kind: record.DepositRate, Date: time.Now()})
	require.NoError(t, err)
	require.NotNil(t, cand)

	assert.Equal(t, 4, cand.Len())
	v, ok := cand.Get(record.TermNoTerm)
	require.True(t, ok)
	assert.InDelta(t, 0.2, v, 1e-9)
}

func TestParseVietcombankTextFallback(t *testing.T) {
	page := `<html><body>
<div>Không kỳ hạn 0,20</div>
<div>6 tháng 2,90</div>
<div>24 tháng 4,70</div>
</body></html>`
	doc, err := ParseHTML(page)
	require.NoError(t, err)

	cand, err := parseVietcombank(doc, Request{SourceID: "VCB", Kind: record.DepositRate, Date: time.Now()})
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, 3, cand.Len())
}
