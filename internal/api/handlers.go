package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"papertrader/internal/ledger"
	"papertrader/internal/logger"
	"papertrader/internal/markethours"
	"papertrader/internal/model"
	"papertrader/internal/notification"
	"papertrader/internal/strategy"
)

const defaultIndexCode = "000001" // Shanghai Composite

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	respondOK(w, s.ledger.Account())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	if err := s.ledger.Reset(); err != nil {
		slog.Error("[api] account reset failed", append(logger.WithTrace(r.Context()), "error", err)...)
		respondError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	respondOK(w, s.ledger.Account())
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	respondOK(w, s.ledger.Positions())
}

// handleTrades returns the trade history newest-first.
func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades := s.ledger.Trades()
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}
	respondOK(w, trades)
}

type tradeRequest struct {
	StockCode string  `json:"stock_code"`
	StockName string  `json:"stock_name"`
	Price     float64 `json:"price"`
	Shares    int64   `json:"shares"`
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	s.handleTrade(w, r, model.TradeBuy)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	s.handleTrade(w, r, model.TradeSell)
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request, side model.TradeType) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.StockCode == "" {
		respondError(w, http.StatusBadRequest, "stock_code is required")
		return
	}

	// Price omitted: trade at the live quote, and pick up the stock name
	// while we are at it.
	if req.Price <= 0 || req.StockName == "" {
		quote, err := s.market.Quote(r.Context(), req.StockCode)
		if err != nil {
			slog.Warn("[api] quote fetch for trade failed", append(logger.WithTrace(r.Context()),
				"stock_code", req.StockCode, "error", err)...)
			respondFail(w, "failed to fetch quote for "+req.StockCode)
			return
		}
		if req.Price <= 0 {
			req.Price = quote.CurrentPrice
		}
		if req.StockName == "" {
			req.StockName = quote.StockName
		}
	}

	var err error
	if side == model.TradeBuy {
		err = s.ledger.Buy(req.StockCode, req.StockName, req.Price, req.Shares)
	} else {
		err = s.ledger.Sell(req.StockCode, req.StockName, req.Price, req.Shares)
	}
	if err != nil {
		reason := rejectReason(err)
		if s.metrics != nil {
			s.metrics.TradesRejected.WithLabelValues(reason).Inc()
		}
		if errors.Is(err, ledger.ErrInvalidOrder) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondFail(w, err.Error())
		return
	}

	if s.metrics != nil {
		s.metrics.TradesTotal.WithLabelValues(string(side)).Inc()
	}
	s.notifyTrade()
	respondOK(w, map[string]any{
		"account":   s.ledger.Account(),
		"positions": s.ledger.Positions(),
	})
}

// notifyTrade sends the alert for the most recent trade in the background.
func (s *Server) notifyTrade() {
	if s.notifier == nil {
		return
	}
	trades := s.ledger.Trades()
	if len(trades) == 0 {
		return
	}
	alert := notification.TradeExecuted(trades[len(trades)-1])
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.Send(ctx, alert); err != nil {
			slog.Warn("[api] trade alert delivery failed", "error", err)
		}
	}()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInvalidOrder):
		return "invalid_order"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ledger.ErrNoPosition):
		return "no_position"
	case errors.Is(err, ledger.ErrInsufficientShares):
		return "insufficient_shares"
	}
	return "internal"
}

// handleQuote fetches a live quote and, when the stock is held, reprices
// the position so account totals stay current.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	start := time.Now()
	quote, err := s.market.Quote(r.Context(), code)
	if s.metrics != nil {
		s.metrics.QuoteFetchDur.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		respondFail(w, "failed to fetch quote for "+code)
		return
	}

	if err := s.ledger.UpdatePrice(code, quote.CurrentPrice); err != nil {
		slog.Warn("[api] position reprice failed", "stock_code", code, "error", err)
	}
	respondOK(w, quote)
}

// handleQuotes fetches a batch of quotes and reprices all matching
// positions in one pass. Codes that fail to resolve are skipped.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("codes")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "codes is required")
		return
	}

	quotes := make([]*model.Quote, 0)
	prices := make(map[string]float64)
	for _, code := range strings.Split(raw, ",") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		quote, err := s.market.Quote(r.Context(), code)
		if err != nil {
			slog.Warn("[api] batch quote fetch failed", "stock_code", code, "error", err)
			continue
		}
		quotes = append(quotes, quote)
		prices[code] = quote.CurrentPrice
	}

	if len(prices) > 0 {
		if err := s.ledger.UpdateAllPrices(prices); err != nil {
			slog.Warn("[api] batch reprice failed", "error", err)
		}
	}
	respondOK(w, quotes)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		respondError(w, http.StatusBadRequest, "keyword is required")
		return
	}
	matches, err := s.directory.Search(r.Context(), keyword)
	if err != nil {
		respondFail(w, "search failed")
		return
	}
	respondOK(w, matches)
}

// historyParams pulls the shared ?period=&count= query arguments.
func historyParams(r *http.Request) (period string, count int, err error) {
	period = r.URL.Query().Get("period")
	if period == "" {
		period = "day"
	}
	switch period {
	case "day", "week", "month":
	default:
		return "", 0, errors.New("period must be day, week, or month")
	}

	count = 60
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count <= 0 {
			return "", 0, errors.New("count must be a positive integer")
		}
	}
	return period, count, nil
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}
	period, count, err := historyParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	bars, err := s.market.History(r.Context(), code, period, count)
	if err != nil {
		respondFail(w, "failed to fetch history for "+code)
		return
	}
	respondOK(w, bars)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}
	raw := r.URL.Query().Get("strategy")
	if raw == "" {
		raw = string(strategy.KindMA)
	}
	kind, err := strategy.ParseKind(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.engine.Analyze(r.Context(), code, kind)
	if err != nil {
		if errors.Is(err, strategy.ErrDataUnavailable) {
			respondFail(w, "market data unavailable for "+code)
			return
		}
		respondFail(w, "analysis failed")
		return
	}
	respondOK(w, report)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		code = defaultIndexCode
	}
	index, err := s.directory.Index(r.Context(), code)
	if err != nil {
		respondFail(w, "failed to fetch index "+code)
		return
	}
	respondOK(w, index)
}

func (s *Server) handleIndexHistory(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		code = defaultIndexCode
	}
	period, count, err := historyParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	bars, err := s.directory.IndexHistory(r.Context(), code, period, count)
	if err != nil {
		respondFail(w, "failed to fetch index history for "+code)
		return
	}
	respondOK(w, bars)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	respondOK(w, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(now.Sub(s.startedAt).Seconds()),
		"time":           now.Format(time.RFC3339),
		"market_open":    markethours.IsOpen(now),
		"market_status":  markethours.StatusString(now),
	})
}
