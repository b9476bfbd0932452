package model

// Quote is a real-time snapshot for one stock as served by the market data
// provider. Prices are in yuan, volume in lots, amount in yuan.
type Quote struct {
	StockCode     string  `json:"stock_code"`
	StockName     string  `json:"stock_name"`
	CurrentPrice  float64 `json:"current_price"`
	OpenPrice     float64 `json:"open_price"`
	HighPrice     float64 `json:"high_price"`
	LowPrice      float64 `json:"low_price"`
	PreClose      float64 `json:"pre_close"`
	Volume        int64   `json:"volume"`
	Amount        float64 `json:"amount"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Timestamp     int64   `json:"timestamp"`
}

// Bar is one historical candle (daily, weekly, or monthly), oldest-first
// in any series returned by the market data provider.
type Bar struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	Close         float64 `json:"close"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int64   `json:"volume"`
	Amount        float64 `json:"amount"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// IndexQuote is a real-time snapshot for a market index.
type IndexQuote struct {
	IndexCode     string  `json:"index_code"`
	CurrentPrice  float64 `json:"current_price"`
	OpenPrice     float64 `json:"open_price"`
	HighPrice     float64 `json:"high_price"`
	LowPrice      float64 `json:"low_price"`
	PreClose      float64 `json:"pre_close"`
	ChangePercent float64 `json:"change_percent"`
}

// StockMatch is one result from a keyword search.
type StockMatch struct {
	StockCode string `json:"stock_code"`
	StockName string `json:"stock_name"`
	Market    string `json:"market"`
}

// Closes extracts the close-price series from a bar slice, preserving order.
func Closes(bars []Bar) []float64 {
	if len(bars) == 0 {
		return nil
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
