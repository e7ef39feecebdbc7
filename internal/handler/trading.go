// Package handler trading
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"Paper-Trading-Service/internal/model"
	"Paper-Trading-Service/internal/service"

	"github.com/sirupsen/logrus"
)

// TradingService trading service
//
//go:generate mockery --name=TradingService --case=underscore --output=./mocks
type TradingService interface {
	OpenFromAlert(ctx context.Context, alert *model.Alert) (*service.OpenResult, error)
	ListActive(ctx context.Context, pair string, page, pageSize int) ([]*model.Position, error)
}

// Response generic envelope sent back to the caller
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Trading handler
type Trading struct {
	service TradingService
	secret  string
	symbols map[string]struct{}
}

// NewTrading constructor, symbols is the accepted pair allow-list
func NewTrading(s TradingService, secret string, symbols []string) *Trading {
	allowed := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		allowed[model.NormalizeSymbol(symbol)] = struct{}{}
	}
	return &Trading{service: s, secret: secret, symbols: allowed}
}

// Routes http routes
func (t *Trading) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/trade", t.ExecuteAlert)
	mux.HandleFunc("/positions", t.ListPositions)
	return mux
}

// ExecuteAlert consumes one TradingView alert and runs the open transition
func (t *Trading) ExecuteAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, Response{
			Status:  "405 Method Not Allowed",
			Message: "Only POST is supported.",
		})
		return
	}

	alert := &model.Alert{}
	if err := json.NewDecoder(r.Body).Decode(alert); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Status:  "400 Bad Request",
			Message: "Malformed alert payload.",
		})
		return
	}

	if alert.Secret != t.secret {
		writeJSON(w, http.StatusUnauthorized, Response{
			Status:  "401 Unauthorized",
			Message: "Invalid secret provided.",
		})
		return
	}

	if _, ok := t.symbols[model.NormalizeSymbol(alert.Pair)]; !ok {
		writeJSON(w, http.StatusBadRequest, Response{
			Status:  "400 Bad Request",
			Message: "Pair is not in the accepted symbol list.",
		})
		return
	}

	result, err := t.service.OpenFromAlert(r.Context(), alert)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"Name":   alert.Name,
			"Pair":   alert.Pair,
			"Signal": alert.Signal,
		}).Errorf("trading - ExecuteAlert - OpenFromAlert: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Status:  "500 Internal Server Error",
			Message: "Trade execution failed.",
		})
		return
	}

	switch result.Status {
	case service.StatusIgnored:
		writeJSON(w, http.StatusOK, Response{
			Status:  "200 OK",
			Message: "Duplicate alert ignored, position already open in this direction.",
			Data:    result,
		})
	case service.StatusReversed:
		writeJSON(w, http.StatusOK, Response{
			Status:  "200 OK",
			Message: "Existing position closed, trade executed in the opposite direction.",
			Data:    result,
		})
	default:
		writeJSON(w, http.StatusOK, Response{
			Status:  "200 OK",
			Message: "Trade executed successfully.",
			Data:    result,
		})
	}
}

// ListPositions paged listing of open positions
func (t *Trading) ListPositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Response{
			Status:  "405 Method Not Allowed",
			Message: "Only GET is supported.",
		})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	positions, err := t.service.ListActive(r.Context(), r.URL.Query().Get("pair"), page, pageSize)
	if err != nil {
		logrus.Errorf("trading - ListPositions - ListActive: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Status:  "500 Internal Server Error",
			Message: "Listing open positions failed.",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Status:  "200 OK",
		Message: "Open positions.",
		Data:    positions,
	})
}

func writeJSON(w http.ResponseWriter, code int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logrus.Errorf("trading - writeJSON - Encode: %v", err)
	}
}
