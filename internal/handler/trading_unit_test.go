package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Paper-Trading-Service/internal/handler/mocks"
	"Paper-Trading-Service/internal/model"
	"Paper-Trading-Service/internal/service"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestHandler(t *testing.T) (*Trading, *mocks.TradingService) {
	tradingService := mocks.NewTradingService(t)
	return NewTrading(tradingService, testSecret, []string{"SOL-USDT", "BTC-USD"}), tradingService
}

func postAlert(t *testing.T, h *Trading, body string) (*httptest.ResponseRecorder, Response) {
	request := httptest.NewRequest(http.MethodPost, "/trade", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	h.Routes().ServeHTTP(recorder, request)

	response := Response{}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	return recorder, response
}

func TestTrading_ExecuteAlert(t *testing.T) {
	h, tradingService := newTestHandler(t)

	tradingService.On("OpenFromAlert", mock.Anything, mock.Anything).Once().
		Return(&service.OpenResult{Status: service.StatusOpened, Position: &model.Position{ID: "p1"}}, nil)

	recorder, response := postAlert(t, h,
		`{"signal":"buy","pair":"SOL-USDT","price":100,"name":"alpha","secret":"test-secret"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "200 OK", response.Status)
	require.Equal(t, "Trade executed successfully.", response.Message)
}

func TestTrading_ExecuteAlert_InvalidSecret(t *testing.T) {
	h, _ := newTestHandler(t)

	recorder, response := postAlert(t, h,
		`{"signal":"buy","pair":"SOL-USDT","price":100,"name":"alpha","secret":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Equal(t, "Invalid secret provided.", response.Message)
}

func TestTrading_ExecuteAlert_UnknownPair(t *testing.T) {
	h, _ := newTestHandler(t)

	recorder, _ := postAlert(t, h,
		`{"signal":"buy","pair":"DOGE-USD","price":100,"name":"alpha","secret":"test-secret"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestTrading_ExecuteAlert_MalformedBody(t *testing.T) {
	h, _ := newTestHandler(t)

	recorder, _ := postAlert(t, h, `{"signal":`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestTrading_ExecuteAlert_Duplicate(t *testing.T) {
	h, tradingService := newTestHandler(t)

	tradingService.On("OpenFromAlert", mock.Anything, mock.Anything).Once().
		Return(&service.OpenResult{Status: service.StatusIgnored, Position: &model.Position{ID: "p1"}}, nil)

	recorder, response := postAlert(t, h,
		`{"signal":"buy","pair":"SOL-USDT","price":100,"name":"alpha","secret":"test-secret"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, response.Message, "Duplicate alert ignored")
}

func TestTrading_ExecuteAlert_ServiceFailure(t *testing.T) {
	h, tradingService := newTestHandler(t)

	tradingService.On("OpenFromAlert", mock.Anything, mock.Anything).Once().
		Return(nil, fmt.Errorf("store down"))

	recorder, _ := postAlert(t, h,
		`{"signal":"sell","pair":"SOL-USDT","price":100,"name":"alpha","secret":"test-secret"}`)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestTrading_ExecuteAlert_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	request := httptest.NewRequest(http.MethodGet, "/trade", nil)
	recorder := httptest.NewRecorder()
	h.Routes().ServeHTTP(recorder, request)
	require.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestTrading_ListPositions(t *testing.T) {
	h, tradingService := newTestHandler(t)

	tradingService.On("ListActive", mock.Anything, "SOL-USDT", 2, 10).Once().
		Return([]*model.Position{{ID: "p1"}}, nil)

	request := httptest.NewRequest(http.MethodGet, "/positions?pair=SOL-USDT&page=2&pageSize=10", nil)
	recorder := httptest.NewRecorder()
	h.Routes().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	response := Response{}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	require.NotNil(t, response.Data)
}

func TestTrading_ListPositions_Failure(t *testing.T) {
	h, tradingService := newTestHandler(t)

	tradingService.On("ListActive", mock.Anything, "", 0, 0).Once().
		Return(nil, fmt.Errorf("store down"))

	request := httptest.NewRequest(http.MethodGet, "/positions", nil)
	recorder := httptest.NewRecorder()
	h.Routes().ServeHTTP(recorder, request)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}
