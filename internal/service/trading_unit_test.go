package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"Paper-Trading-Service/internal/calc"
	"Paper-Trading-Service/internal/model"
	"Paper-Trading-Service/internal/repository"
	"Paper-Trading-Service/internal/service/mocks"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestTrading(t *testing.T) (*Trading, *mocks.PositionsRepository, *mocks.Transactor) {
	positions := mocks.NewPositionsRepository(t)
	transactor := mocks.NewTransactor(t)
	trading := NewTrading(repository.NewRegistry(), positions, transactor, calc.NewDefaultCalculator(), Defaults{
		NotionalValue:     1000,
		Leverage:          3,
		TakeProfitPercent: 10,
		StopLossPercent:   5,
		PersistTimeout:    time.Second,
	})
	return trading, positions, transactor
}

// passThrough executes the transaction function directly
func passThrough(transactor *mocks.Transactor) *mock.Call {
	return transactor.On("WithinTransaction", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, txFn repository.TxFunc) error {
			return txFn(ctx)
		})
}

func buyAlert(name, pair string, price float64) *model.Alert {
	return &model.Alert{Signal: model.Buy, Pair: pair, Price: price, Name: name}
}

func TestTrading_OpenFromAlert(t *testing.T) {
	trading, positions, _ := newTestTrading(t)
	positions.On("InsertActive", mock.Anything, mock.Anything).Once().Return(nil)

	result, err := trading.OpenFromAlert(context.Background(), buyAlert("alpha", "SOL-USDT", 100))
	require.NoError(t, err)
	require.Equal(t, StatusOpened, result.Status)

	position := result.Position
	require.Equal(t, "SOLUSDT", position.Pair)
	require.Equal(t, model.Long, position.Direction)
	require.Equal(t, model.Paper, position.Kind)
	require.InDelta(t, 10.0, position.Quantity, 1e-9)
	require.InDelta(t, 67.0, position.LiquidationPrice, 1e-9)
	require.NotNil(t, position.TakeProfit)
	require.InDelta(t, 110.0, *position.TakeProfit, 1e-9)
	require.NotNil(t, position.StopLoss)
	require.InDelta(t, 95.0, *position.StopLoss, 1e-9)
	require.Equal(t, 1, trading.registry.Len())
}

func TestTrading_OpenFromAlert_AlertThresholdsHonored(t *testing.T) {
	trading, positions, _ := newTestTrading(t)
	positions.On("InsertActive", mock.Anything, mock.Anything).Once().Return(nil)

	alert := buyAlert("alpha", "SOLUSDT", 100)
	alert.TakeProfit = ptr(140)
	alert.StopLoss = ptr(80)

	result, err := trading.OpenFromAlert(context.Background(), alert)
	require.NoError(t, err)
	require.InDelta(t, 140.0, *result.Position.TakeProfit, 1e-9)
	require.InDelta(t, 80.0, *result.Position.StopLoss, 1e-9)
}

func TestTrading_OpenFromAlert_DuplicateIgnored(t *testing.T) {
	trading, positions, _ := newTestTrading(t)
	positions.On("InsertActive", mock.Anything, mock.Anything).Once().Return(nil)

	first, err := trading.OpenFromAlert(context.Background(), buyAlert("alpha", "SOLUSDT", 100))
	require.NoError(t, err)
	require.Equal(t, StatusOpened, first.Status)

	second, err := trading.OpenFromAlert(context.Background(), buyAlert("alpha", "SOL-USDT", 105))
	require.NoError(t, err)
	require.Equal(t, StatusIgnored, second.Status)
	require.Equal(t, first.Position.ID, second.Position.ID)
	require.Equal(t, 1, trading.registry.Len())
}

func TestTrading_OpenFromAlert_Reverse(t *testing.T) {
	trading, positions, transactor := newTestTrading(t)
	positions.On("InsertActive", mock.Anything, mock.Anything).Twice().Return(nil)
	passThrough(transactor).Once()

	var persisted *model.ClosedPosition
	positions.On("InsertClosed", mock.Anything, mock.Anything).Once().
		Run(func(args mock.Arguments) { persisted = args.Get(1).(*model.ClosedPosition) }).
		Return(nil)
	positions.On("DeleteActive", mock.Anything, mock.Anything).Once().Return(nil)

	first, err := trading.OpenFromAlert(context.Background(), buyAlert("alpha", "SOLUSDT", 100))
	require.NoError(t, err)

	sell := &model.Alert{Signal: model.Sell, Pair: "SOLUSDT", Price: 120, Name: "alpha"}
	result, err := trading.OpenFromAlert(context.Background(), sell)
	require.NoError(t, err)
	require.Equal(t, StatusReversed, result.Status)

	require.NotNil(t, result.Closed)
	require.Equal(t, first.Position.ID, result.Closed.ID)
	require.Equal(t, model.Reversal, result.Closed.Reason)
	require.InDelta(t, 120.0, result.Closed.ExitPrice, 1e-9)
	require.Equal(t, persisted, result.Closed)
	// long 10 @ 100 closed at 120 minus the 1.0 execution fee
	require.InDelta(t, 199.0, result.Closed.PNL, 1e-6)

	require.Equal(t, 1, trading.registry.Len())
	require.Equal(t, model.Short, result.Position.Direction)
	require.InDelta(t, 120.0, result.Position.EntryPrice, 1e-9)
}

func TestTrading_OpenFromAlert_PersistFailure(t *testing.T) {
	trading, positions, _ := newTestTrading(t)
	positions.On("InsertActive", mock.Anything, mock.Anything).Once().Return(fmt.Errorf("store down"))

	_, err := trading.OpenFromAlert(context.Background(), buyAlert("alpha", "SOLUSDT", 100))
	require.Error(t, err)
	require.Equal(t, 0, trading.registry.Len())
}

func TestTrading_OpenFromAlert_Invalid(t *testing.T) {
	trading, _, _ := newTestTrading(t)

	_, err := trading.OpenFromAlert(context.Background(), &model.Alert{Signal: "hold", Pair: "SOLUSDT", Price: 100, Name: "alpha"})
	require.Error(t, err)

	_, err = trading.OpenFromAlert(context.Background(), buyAlert("alpha", "SOLUSDT", -1))
	require.Error(t, err)

	_, err = trading.OpenFromAlert(context.Background(), buyAlert("", "SOLUSDT", 100))
	require.Error(t, err)
}

func TestTrading_HandleTick(t *testing.T) {
	trading, positions, transactor := newTestTrading(t)
	positions.On("InsertActive", mock.Anything, mock.Anything).Once().Return(nil)
	passThrough(transactor).Once()

	var persisted *model.ClosedPosition
	positions.On("InsertClosed", mock.Anything, mock.Anything).Once().
		Run(func(args mock.Arguments) { persisted = args.Get(1).(*model.ClosedPosition) }).
		Return(nil)
	positions.On("DeleteActive", mock.Anything, mock.Anything).Once().Return(nil)

	_, err := trading.OpenFromAlert(context.Background(), buyAlert("alpha", "SOLUSDT", 100))
	require.NoError(t, err)

	// default stop-loss sits at 95
	trading.HandleTick(context.Background(), model.PriceTick{Symbol: "SOLUSDT", Price: 94, ObservedAt: time.Now()})

	require.Equal(t, 0, trading.registry.Len())
	require.NotNil(t, persisted)
	require.Equal(t, model.StopLoss, persisted.Reason)
	require.InDelta(t, 94.0, persisted.ExitPrice, 1e-9)
}

func TestTrading_HandleTick_IrrelevantSymbol(t *testing.T) {
	trading, positions, _ := newTestTrading(t)
	positions.On("InsertActive", mock.Anything, mock.Anything).Once().Return(nil)

	_, err := trading.OpenFromAlert(context.Background(), buyAlert("alpha", "SOLUSDT", 100))
	require.NoError(t, err)

	trading.HandleTick(context.Background(), model.PriceTick{Symbol: "BTCUSD", Price: 1, ObservedAt: time.Now()})
	require.Equal(t, 1, trading.registry.Len())
}

func TestTrading_HandleTick_PersistFailureLeavesOpen(t *testing.T) {
	trading, positions, transactor := newTestTrading(t)
	positions.On("InsertActive", mock.Anything, mock.Anything).Once().Return(nil)

	transactor.On("WithinTransaction", mock.Anything, mock.Anything).Once().Return(fmt.Errorf("store down"))

	_, err := trading.OpenFromAlert(context.Background(), buyAlert("alpha", "SOLUSDT", 100))
	require.NoError(t, err)

	tick := model.PriceTick{Symbol: "SOLUSDT", Price: 94, ObservedAt: time.Now()}
	trading.HandleTick(context.Background(), tick)

	// the failed close left the position open and eligible for the next tick
	require.Equal(t, 1, trading.registry.Len())

	passThrough(transactor).Once()
	positions.On("InsertClosed", mock.Anything, mock.Anything).Once().Return(nil)
	positions.On("DeleteActive", mock.Anything, mock.Anything).Once().Return(nil)

	trading.HandleTick(context.Background(), tick)
	require.Equal(t, 0, trading.registry.Len())
}

func TestTrading_ClosePosition_AlreadyClosed(t *testing.T) {
	trading, _, _ := newTestTrading(t)

	closed, err := trading.ClosePosition(context.Background(), "missing", 100, model.StopLoss)
	require.NoError(t, err)
	require.Nil(t, closed)
}

func TestTrading_LoadActivePositions(t *testing.T) {
	trading, positions, _ := newTestTrading(t)

	stored := []*model.Position{
		{ID: "1", Name: "alpha", Pair: "SOLUSDT", Kind: model.Paper, Direction: model.Long},
		{ID: "2", Name: "beta", Pair: "BTCUSD", Kind: model.Paper, Direction: model.Short},
	}
	positions.On("ListActive", mock.Anything, repository.ActiveFilter{}, 1, repository.MaxPageSize).
		Once().Return(stored, nil)

	require.NoError(t, trading.LoadActivePositions(context.Background()))
	require.Equal(t, 2, trading.registry.Len())
}

func TestTrading_LoadActivePositions_Error(t *testing.T) {
	trading, positions, _ := newTestTrading(t)
	positions.On("ListActive", mock.Anything, repository.ActiveFilter{}, 1, repository.MaxPageSize).
		Once().Return(nil, fmt.Errorf("store down"))

	require.Error(t, trading.LoadActivePositions(context.Background()))
}

// TestTrading_ConcurrentOpenClose hammers the same idempotency key with
// concurrent alert-opens and tick-closes. At every point at most one open
// position may exist per key, and the store and registry must agree at the
// end: inserted actives minus persisted closes equals what is still open.
func TestTrading_ConcurrentOpenClose(t *testing.T) {
	trading, positions, transactor := newTestTrading(t)

	var opened, closed atomic.Int64
	positions.On("InsertActive", mock.Anything, mock.Anything).Maybe().
		Run(func(mock.Arguments) { opened.Add(1) }).Return(nil)
	positions.On("InsertClosed", mock.Anything, mock.Anything).Maybe().
		Run(func(mock.Arguments) { closed.Add(1) }).Return(nil)
	positions.On("DeleteActive", mock.Anything, mock.Anything).Maybe().Return(nil)
	passThrough(transactor).Maybe()

	ctx := context.Background()
	var wg sync.WaitGroup

	for worker := 0; worker < 4; worker++ {
		rng := rand.New(rand.NewSource(int64(worker)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				alert := buyAlert("alpha", "SOLUSDT", 100)
				if rng.Intn(2) == 0 {
					alert.Signal = model.Sell
				}
				_, err := trading.OpenFromAlert(ctx, alert)
				require.NoError(t, err)
			}
		}()
	}

	for worker := 0; worker < 4; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				for _, position := range trading.registry.FindBySymbol("SOLUSDT") {
					_, err := trading.ClosePosition(ctx, position.ID, 100, model.StopLoss)
					require.NoError(t, err)
				}
			}
		}()
	}

	wg.Wait()

	require.LessOrEqual(t, trading.registry.Len(), 1)
	require.Equal(t, opened.Load()-closed.Load(), int64(trading.registry.Len()))
}

func TestTrading_Run_StopsOnContext(t *testing.T) {
	trading, _, _ := newTestTrading(t)

	ticks := make(chan model.PriceTick)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		trading.Run(ctx, ticks)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop on context cancellation")
	}
}
