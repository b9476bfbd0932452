package eastmoney

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestSecID(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"600519", "1.600519"},
		{"601318", "1.601318"},
		{"000001", "0.000001"},
		{"300750", "0.300750"},
	}
	for _, tc := range cases {
		got, err := secID(tc.code)
		if err != nil {
			t.Errorf("secID(%s): %v", tc.code, err)
			continue
		}
		if got != tc.want {
			t.Errorf("secID(%s) = %s, want %s", tc.code, got, tc.want)
		}
	}

	if _, err := secID("900001"); !errors.Is(err, ErrUnknownMarket) {
		t.Errorf("expected ErrUnknownMarket, got %v", err)
	}
}

func TestPeriodKLT(t *testing.T) {
	if got := periodKLT("day"); got != "101" {
		t.Errorf("day = %s, want 101", got)
	}
	if got := periodKLT("week"); got != "102" {
		t.Errorf("week = %s, want 102", got)
	}
	if got := periodKLT("month"); got != "103" {
		t.Errorf("month = %s, want 103", got)
	}
}

func TestQuote_ParsesAndScalesPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("secid"); got != "1.600519" {
			t.Errorf("secid = %s, want 1.600519", got)
		}
		w.Write([]byte(`{"data":{
			"f43":166600,"f44":168000,"f45":165000,"f46":166000,
			"f47":25000,"f48":4150000000.0,"f58":"贵州茅台",
			"f60":165500,"f107":1,"f169":110,"f170":66}}`))
	}))
	defer srv.Close()

	client := New(Config{QuoteBaseURL: srv.URL})
	quote, err := client.Quote(context.Background(), "600519")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if quote.StockCode != "600519" || quote.StockName != "贵州茅台" {
		t.Errorf("unexpected identity %s/%s", quote.StockCode, quote.StockName)
	}
	assertClose(t, "current_price", quote.CurrentPrice, 1666.0)
	assertClose(t, "high_price", quote.HighPrice, 1680.0)
	assertClose(t, "low_price", quote.LowPrice, 1650.0)
	assertClose(t, "open_price", quote.OpenPrice, 1660.0)
	assertClose(t, "pre_close", quote.PreClose, 1655.0)
	assertClose(t, "change", quote.Change, 1.1)
	assertClose(t, "change_percent", quote.ChangePercent, 0.66)
	if quote.Volume != 25000 {
		t.Errorf("volume = %d, want 25000", quote.Volume)
	}
	assertClose(t, "amount", quote.Amount, 4150000000.0)
}

func TestQuote_EmptyDataIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	client := New(Config{QuoteBaseURL: srv.URL})
	if _, err := client.Quote(context.Background(), "600519"); err == nil {
		t.Fatal("expected error for null data")
	}
}

func TestQuote_RetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"f43":1000,"f58":"平安银行"}}`))
	}))
	defer srv.Close()

	client := New(Config{QuoteBaseURL: srv.URL})
	quote, err := client.Quote(context.Background(), "000001")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	assertClose(t, "current_price", quote.CurrentPrice, 10.0)
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestQuote_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(Config{QuoteBaseURL: srv.URL})
	if _, err := client.Quote(context.Background(), "000001"); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if got := atomic.LoadInt32(&calls); got != maxAttempts {
		t.Errorf("expected %d attempts, got %d", maxAttempts, got)
	}
}

func TestHistory_ParsesKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("klt"); got != "101" {
			t.Errorf("klt = %s, want 101", got)
		}
		if got := q.Get("fqt"); got != "1" {
			t.Errorf("fqt = %s, want 1", got)
		}
		if got := q.Get("lmt"); got != "2" {
			t.Errorf("lmt = %s, want 2", got)
		}
		w.Write([]byte(`{"data":{"klines":[
			"2024-03-01,10.00,10.50,10.80,9.90,12345,129000.5,9.0,5.0,0.5,1.2",
			"2024-03-04,10.50,10.20,10.60,10.10,23456,240000.0,4.8,-2.9,-0.3,2.1",
			"garbage-row"
		]}}`))
	}))
	defer srv.Close()

	client := New(Config{KlineBaseURL: srv.URL})
	bars, err := client.History(context.Background(), "600519", "day", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars (malformed row skipped), got %d", len(bars))
	}

	first := bars[0]
	if first.Date != "2024-03-01" {
		t.Errorf("date = %s, want 2024-03-01", first.Date)
	}
	assertClose(t, "open", first.Open, 10.0)
	assertClose(t, "close", first.Close, 10.5)
	assertClose(t, "high", first.High, 10.8)
	assertClose(t, "low", first.Low, 9.9)
	if first.Volume != 12345 {
		t.Errorf("volume = %d, want 12345", first.Volume)
	}
	assertClose(t, "change", first.Change, 0.5)
	assertClose(t, "change_percent", first.ChangePercent, 5.0)
}

func TestIndexHistory_UsesUnadjustedKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("secid"); got != "1.000001" {
			t.Errorf("secid = %s, want 1.000001", got)
		}
		if got := q.Get("fqt"); got != "0" {
			t.Errorf("fqt = %s, want 0", got)
		}
		w.Write([]byte(`{"data":{"klines":["2024-03-01,3000.0,3050.0,3060.0,2990.0,1000,2000.0"]}}`))
	}))
	defer srv.Close()

	client := New(Config{KlineBaseURL: srv.URL})
	bars, err := client.IndexHistory(context.Background(), "000001", "day", 30)
	if err != nil {
		t.Fatalf("IndexHistory: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(bars))
	}
	assertClose(t, "close", bars[0].Close, 3050.0)
}

func TestIndex_ParsesQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("secid"); got != "1.000001" {
			t.Errorf("secid = %s, want 1.000001", got)
		}
		w.Write([]byte(`{"data":{"f43":305000,"f44":306000,"f45":299000,"f46":300000,"f60":301000,"f170":133}}`))
	}))
	defer srv.Close()

	client := New(Config{QuoteBaseURL: srv.URL})
	index, err := client.Index(context.Background(), "000001")
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertClose(t, "current_price", index.CurrentPrice, 3050.0)
	assertClose(t, "pre_close", index.PreClose, 3010.0)
	assertClose(t, "change_percent", index.ChangePercent, 1.33)
}

func TestSearch_LimitsToTen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("input"); got != "茅台" {
			t.Errorf("input = %s, want 茅台", got)
		}
		w.Write([]byte(`{"QuotationCodeTable":{"Data":[
			{"Code":"600519","Name":"贵州茅台","Market":"1"},
			{"Code":"000860","Name":"顺鑫农业","Market":"0"},
			{"Code":"000001","Name":"平安银行","Market":"0"},
			{"Code":"000002","Name":"万科A","Market":"0"},
			{"Code":"000003","Name":"PT金田A","Market":"0"},
			{"Code":"000004","Name":"国华网安","Market":"0"},
			{"Code":"000005","Name":"ST星源","Market":"0"},
			{"Code":"000006","Name":"深振业A","Market":"0"},
			{"Code":"000007","Name":"全新好","Market":"0"},
			{"Code":"000008","Name":"神州高铁","Market":"0"},
			{"Code":"000009","Name":"中国宝安","Market":"0"},
			{"Code":"000010","Name":"美丽生态","Market":"0"}
		]}}`))
	}))
	defer srv.Close()

	client := New(Config{SearchBaseURL: srv.URL})
	matches, err := client.Search(context.Background(), "茅台")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 10 {
		t.Fatalf("expected 10 matches, got %d", len(matches))
	}
	if matches[0].StockCode != "600519" || matches[0].StockName != "贵州茅台" {
		t.Errorf("unexpected first match %+v", matches[0])
	}
}
