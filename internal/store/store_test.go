package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietdataverse/fincrawl/internal/record"
)

type dbCall struct {
	sql  string
	args []any
}

// fakeDB satisfies Querier and records every statement.
type fakeDB struct {
	calls   []dbCall
	count   int // returned by COUNT(*) dedup checks
	execErr error
	urls    []*string
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, dbCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, dbCall{sql: sql, args: args})
	return &fakeRow{count: f.count}
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, dbCall{sql: sql, args: args})
	return &fakeRows{urls: f.urls}, nil
}

type fakeRow struct {
	count int
}

func (r *fakeRow) Scan(dest ...any) error {
	if p, ok := dest[0].(*int); ok {
		*p = r.count
	}
	return nil
}

type fakeRows struct {
	urls []*string
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool                                   { r.pos++; return r.pos <= len(r.urls) }
func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(**string)) = r.urls[r.pos-1]
	return nil
}
func (r *fakeRows) Values() ([]any, error) { return nil, nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

func depositCandidate() *record.Candidate {
	c := record.New(record.DepositRate, "ACB", time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC))
	_ = c.Set(record.Term1M, 3.1)
	_ = c.Set(record.Term6M, 4.2)
	_ = c.Set(record.Term12M, 5.2)
	return c
}

func TestPersistTermDepositInsert(t *testing.T) {
	db := &fakeDB{}
	s := NewWithQuerier(db)

	out, err := s.PersistTermDeposit(context.Background(), depositCandidate(), false)
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)

	require.Len(t, db.calls, 2)
	assert.Contains(t, db.calls[0].sql, "SELECT COUNT(*)")
	assert.Equal(t, []any{"ACB", "2026-02-17"}, db.calls[0].args)

	insert := db.calls[1]
	assert.Contains(t, insert.sql, "INSERT INTO vn_bank_termdepo")
	assert.Contains(t, insert.sql, "term_1m, term_6m, term_12m")
	assert.NotContains(t, insert.sql, "term_noterm", "absent tenors stay out of the column list")
	assert.Equal(t, 5.2, insert.args[len(insert.args)-1])
}

func TestPersistTermDepositSkipsDuplicate(t *testing.T) {
	db := &fakeDB{count: 1}
	s := NewWithQuerier(db)

	out, err := s.PersistTermDeposit(context.Background(), depositCandidate(), false)
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)
	require.Len(t, db.calls, 1, "no insert after the dedup hit")
}

func TestPersistTermDepositForce(t *testing.T) {
	db := &fakeDB{count: 1}
	s := NewWithQuerier(db)

	out, err := s.PersistTermDeposit(context.Background(), depositCandidate(), true)
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)

	require.Len(t, db.calls, 2)
	assert.Contains(t, db.calls[0].sql, "DELETE FROM vn_bank_termdepo")
	assert.Contains(t, db.calls[1].sql, "INSERT INTO")
}

func TestPersistTermDepositInsertError(t *testing.T) {
	db := &fakeDB{execErr: errors.New("connection reset")}
	s := NewWithQuerier(db)

	_, err := s.PersistTermDeposit(context.Background(), depositCandidate(), true)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "vn_bank_termdepo", se.Table)
}

func TestPersistFXSparseColumns(t *testing.T) {
	db := &fakeDB{}
	s := NewWithQuerier(db)

	transfer := 26150.0
	out, err := s.PersistFX(context.Background(), FXRow{
		Date:        time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC),
		Currency:    "EUR",
		SourceKind:  "API",
		Bank:        "VCB",
		BuyTransfer: &transfer,
	}, false)
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)

	insert := db.calls[1]
	assert.Contains(t, insert.sql, "buy_transfer")
	assert.NotContains(t, insert.sql, "sell_rate")
	assert.NotContains(t, insert.sql, "document_no")
}

func TestPersistFXCentralRateRow(t *testing.T) {
	c := record.New(record.CentralRate, "SBV", time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC))
	c.DocumentNo = "36/TB-NHNN"
	_ = c.Set(record.FieldCentralRate, 25069)

	row := FXRowFromCandidate(c)
	assert.Equal(t, "USD", row.Currency)
	assert.Equal(t, "Crawl", row.SourceKind)
	assert.Equal(t, "SBV", row.Bank)
	require.NotNil(t, row.Rate)
	assert.Equal(t, 25069.0, *row.Rate)

	db := &fakeDB{}
	s := NewWithQuerier(db)
	_, err := s.PersistFX(context.Background(), row, false)
	require.NoError(t, err)
	assert.Contains(t, db.calls[1].sql, "usd_vnd_rate")
	assert.Contains(t, db.calls[1].sql, "document_no")
}

func TestPersistGoldHourWindow(t *testing.T) {
	db := &fakeDB{}
	s := NewWithQuerier(db)

	c := record.New(record.MetalPrice, "gold24h", time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC))
	c.SubKey = "SJC Hồ Chí Minh"
	_ = c.Set(record.FieldBuyPrice, 119200000)
	_ = c.Set(record.FieldSellPrice, 121200000)

	out, err := s.PersistGold(context.Background(), c, false)
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)

	check := db.calls[0]
	assert.Contains(t, check.sql, "crawl_time >= $3 AND crawl_time < $4")
	start := check.args[2].(time.Time)
	end := check.args[3].(time.Time)
	assert.Equal(t, time.Hour, end.Sub(start))
	assert.Zero(t, start.Minute())
}

func TestPersistSilver(t *testing.T) {
	db := &fakeDB{}
	s := NewWithQuerier(db)

	c := record.New(record.MetalPrice, "giabac", time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC))
	c.SubKey = "1 lượng"
	_ = c.Set(record.FieldBuyPrice, 1520000)

	out, err := s.PersistSilver(context.Background(), c, false)
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)
	assert.Contains(t, db.calls[1].sql, "vn_silver_phuquy_hist")
	assert.Contains(t, db.calls[1].args, "giabac")
}

func TestPersistInterbankColumns(t *testing.T) {
	db := &fakeDB{}
	s := NewWithQuerier(db)

	rate := 4.12
	vol := 398512.0
	weekRate := 4.35
	out, err := s.PersistInterbank(context.Background(), InterbankRow{
		Date: time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC),
		Terms: []InterbankTerm{
			{Column: "quadem", Rate: &rate, Volume: &vol},
			{Column: "1w", Rate: &weekRate},
		},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)

	insert := db.calls[1]
	assert.Contains(t, insert.sql, "ls_quadem")
	assert.Contains(t, insert.sql, "doanhso_quadem")
	assert.Contains(t, insert.sql, "ls_1w")
	assert.NotContains(t, insert.sql, "doanhso_1w", "nil volumes produce no column")
}

func TestUpdatePolicyRates(t *testing.T) {
	db := &fakeDB{count: 1}
	s := NewWithQuerier(db)

	rediscount := 3.0
	out, err := s.UpdatePolicyRates(context.Background(), time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC), &rediscount, nil)
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)
	assert.Contains(t, db.calls[1].sql, "UPDATE vn_sbv_interbankrate SET rediscount_rate")
}

func TestUpdatePolicyRatesWithoutDailyRow(t *testing.T) {
	db := &fakeDB{count: 0}
	s := NewWithQuerier(db)

	out, err := s.UpdatePolicyRates(context.Background(), time.Now(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)
	require.Len(t, db.calls, 1, "no update without the interbank row")
}

func TestRecentURLs(t *testing.T) {
	a := "https://example.com/a"
	b := "https://example.com/b"
	empty := ""
	db := &fakeDB{urls: []*string{&a, nil, &empty, &b}}
	s := NewWithQuerier(db)

	seen, err := s.RecentURLs(context.Background(), 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{a: true, b: true}, seen)
	assert.Contains(t, db.calls[0].sql, "INTERVAL '48 hours'")
}

func TestInsertNews(t *testing.T) {
	db := &fakeDB{}
	s := NewWithQuerier(db)

	err := s.InsertNews(context.Background(), NewsRow{
		Title:       "Fed giữ nguyên lãi suất",
		Brief:       "Tóm tắt",
		SourceName:  "CNBC",
		SourceDate:  "2026-02-17",
		URL:         "https://example.com/fed",
		Label:       "negative",
		Impact:      -45,
		GeneratedAt: time.Now(),
		Lang:        "vi",
	})
	require.NoError(t, err)
	require.Len(t, db.calls, 1)
	assert.True(t, strings.Contains(db.calls[0].sql, "mri_analysis"))
	assert.Equal(t, -45, db.calls[0].args[6])
}
