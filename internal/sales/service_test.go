package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"api_pos/internal/cash"
	"api_pos/internal/catalog"
	"api_pos/internal/sales"
	"api_pos/internal/storage/sqlite"
)

func newSalesFixture(t *testing.T) (*sales.Service, *catalog.Service, *cash.Service, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err, "Expected in-memory store to open")
	t.Cleanup(func() { store.Close() })

	logger := zaptest.NewLogger(t)
	return sales.NewService(store, logger, "PV-TEST"),
		catalog.NewService(store, logger),
		cash.NewService(store, logger),
		store
}

func seedProduct(t *testing.T, catalogSvc *catalog.Service, barcode, name string, price decimal.Decimal, stock int) *catalog.Product {
	t.Helper()
	p, err := catalogSvc.CreateProduct(context.Background(), catalog.ProductInput{
		Barcode: barcode,
		Name:    name,
		Price:   price,
		Stock:   stock,
	})
	require.NoError(t, err, "Expected product seed to succeed")
	return p
}

func openRegister(t *testing.T, cashSvc *cash.Service) {
	t.Helper()
	_, err := cashSvc.Open(context.Background(), "tester", decimal.NewFromInt(1000), "")
	require.NoError(t, err, "Expected cash session to open")
}

func TestCommit_RejectsWhenRegisterClosed(t *testing.T) {
	salesSvc, catalogSvc, _, _ := newSalesFixture(t)
	p := seedProduct(t, catalogSvc, "111", "Water", decimal.NewFromInt(100), 10)

	_, err := salesSvc.Commit(context.Background(), "tester", sales.SaleInput{
		Items: []sales.SaleLine{{ProductID: p.ID, Qty: 1}},
		Total: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, sales.ErrRegisterClosed, "Expected sale to be rejected while no session is open")
}

func TestCommit_RejectsInvalidLines(t *testing.T) {
	salesSvc, _, cashSvc, _ := newSalesFixture(t)
	openRegister(t, cashSvc)

	cases := []struct {
		name  string
		input sales.SaleInput
	}{
		{"no items", sales.SaleInput{}},
		{"empty product", sales.SaleInput{Items: []sales.SaleLine{{ProductID: "", Qty: 1}}}},
		{"zero qty", sales.SaleInput{Items: []sales.SaleLine{{ProductID: "p1", Qty: 0}}}},
		{"negative qty", sales.SaleInput{Items: []sales.SaleLine{{ProductID: "p1", Qty: -2}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := salesSvc.Commit(context.Background(), "tester", tc.input)
			assert.ErrorIs(t, err, sales.ErrInvalidLine)
		})
	}
}

func TestCommit_DecrementsStock(t *testing.T) {
	salesSvc, catalogSvc, cashSvc, _ := newSalesFixture(t)
	p := seedProduct(t, catalogSvc, "222", "Cola", decimal.NewFromInt(600), 10)
	openRegister(t, cashSvc)

	sale, err := salesSvc.Commit(context.Background(), "tester", sales.SaleInput{
		Items: []sales.SaleLine{{
			ProductID: p.ID,
			Qty:       2,
			Price:     decimal.NewFromInt(600),
			Total:     decimal.NewFromInt(1200),
		}},
		Subtotal: decimal.NewFromInt(1200),
		Total:    decimal.NewFromInt(1200),
	})
	require.NoError(t, err, "Expected sale to commit")
	assert.NotEmpty(t, sale.ID, "Expected sale ID to be generated")
	assert.Equal(t, sales.PaymentCash, sale.PaymentMethod, "Expected payment method to default to cash")
	assert.Equal(t, "PV-TEST", sale.PosID, "Expected register ID to default")
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Cola", sale.Items[0].ProductName, "Expected the product name snapshot on the line")

	got, err := catalogSvc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock, "Expected stock to drop from 10 to 8")
}

func TestCommit_CoalescesRepeatedLines(t *testing.T) {
	salesSvc, catalogSvc, cashSvc, _ := newSalesFixture(t)
	p := seedProduct(t, catalogSvc, "333", "Bread", decimal.NewFromInt(150), 5)
	openRegister(t, cashSvc)

	_, err := salesSvc.Commit(context.Background(), "tester", sales.SaleInput{
		Items: []sales.SaleLine{
			{ProductID: p.ID, Qty: 2},
			{ProductID: p.ID, Qty: 1},
		},
		Total: decimal.NewFromInt(450),
	})
	require.NoError(t, err)

	got, err := catalogSvc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock, "Expected both lines to count against the same product")
}

func TestCommit_InsufficientStockListsShortages(t *testing.T) {
	salesSvc, catalogSvc, cashSvc, _ := newSalesFixture(t)
	p := seedProduct(t, catalogSvc, "444", "Milk", decimal.NewFromInt(900), 3)
	openRegister(t, cashSvc)

	_, err := salesSvc.Commit(context.Background(), "tester", sales.SaleInput{
		Items: []sales.SaleLine{{ProductID: p.ID, Qty: 5}},
		Total: decimal.NewFromInt(4500),
	})
	var stockErr *sales.InsufficientStockError
	require.ErrorAs(t, err, &stockErr, "Expected the typed insufficient-stock error")
	require.Len(t, stockErr.Items, 1)
	assert.Equal(t, p.ID, stockErr.Items[0].ProductID)
	assert.Equal(t, "Milk", stockErr.Items[0].Name)
	assert.Equal(t, 3, stockErr.Items[0].Available)
	assert.Equal(t, 5, stockErr.Items[0].Need)
}

func TestCommit_RejectionLeavesStockUntouched(t *testing.T) {
	salesSvc, catalogSvc, cashSvc, _ := newSalesFixture(t)
	ok := seedProduct(t, catalogSvc, "555", "Rice", decimal.NewFromInt(800), 10)
	short := seedProduct(t, catalogSvc, "666", "Oil", decimal.NewFromInt(2000), 1)
	openRegister(t, cashSvc)

	_, err := salesSvc.Commit(context.Background(), "tester", sales.SaleInput{
		Items: []sales.SaleLine{
			{ProductID: ok.ID, Qty: 2},
			{ProductID: short.ID, Qty: 3},
		},
		Total: decimal.NewFromInt(7600),
	})
	var stockErr *sales.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	got, err := catalogSvc.GetProduct(context.Background(), ok.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock, "Expected no partial decrement on a rejected sale")
}

func TestCommit_UnknownProductReportedAsShortage(t *testing.T) {
	salesSvc, _, cashSvc, _ := newSalesFixture(t)
	openRegister(t, cashSvc)

	_, err := salesSvc.Commit(context.Background(), "tester", sales.SaleInput{
		Items: []sales.SaleLine{{ProductID: "missing-id", Qty: 1}},
		Total: decimal.NewFromInt(100),
	})
	var stockErr *sales.InsufficientStockError
	require.ErrorAs(t, err, &stockErr, "Expected an unknown product to surface as a shortage")
	require.Len(t, stockErr.Items, 1)
	assert.Equal(t, 0, stockErr.Items[0].Available)
}

func TestCommit_PreservesSubmittedTotals(t *testing.T) {
	salesSvc, catalogSvc, cashSvc, _ := newSalesFixture(t)
	p := seedProduct(t, catalogSvc, "777", "Sugar", decimal.NewFromInt(500), 10)
	openRegister(t, cashSvc)

	in := sales.SaleInput{
		Items: []sales.SaleLine{{
			ProductID: p.ID,
			Qty:       1,
			Price:     decimal.NewFromInt(500),
			Total:     decimal.NewFromInt(500),
		}},
		Subtotal:      decimal.NewFromInt(500),
		TaxTotal:      decimal.NewFromInt(87),
		Discount:      decimal.NewFromInt(50),
		Total:         decimal.NewFromInt(450),
		PaymentMethod: sales.PaymentQR,
		PosID:         "PV-0002",
	}
	sale, err := salesSvc.Commit(context.Background(), "tester", in)
	require.NoError(t, err)

	assert.True(t, sale.Subtotal.Equal(in.Subtotal), "Expected subtotal as submitted")
	assert.True(t, sale.TaxTotal.Equal(in.TaxTotal), "Expected tax total as submitted")
	assert.True(t, sale.Discount.Equal(in.Discount), "Expected discount as submitted")
	assert.True(t, sale.Total.Equal(in.Total), "Expected total as submitted, not recomputed")
	assert.Equal(t, sales.PaymentQR, sale.PaymentMethod)
	assert.Equal(t, "PV-0002", sale.PosID)
}

func TestCommit_ConcurrentSalesNeverOversell(t *testing.T) {
	salesSvc, catalogSvc, cashSvc, _ := newSalesFixture(t)
	p := seedProduct(t, catalogSvc, "888", "Last Units", decimal.NewFromInt(400), 5)
	openRegister(t, cashSvc)

	// Twice as many one-unit sales as there is stock race each other; only
	// as many as the stock covers may commit, and none may drive it negative.
	const attempts = 10
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for n := 0; n < attempts; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := salesSvc.Commit(context.Background(), "tester", sales.SaleInput{
				Items: []sales.SaleLine{{ProductID: p.ID, Qty: 1, Price: p.Price, Total: p.Price}},
				Total: p.Price,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var committed, short int
	for err := range results {
		var stockErr *sales.InsufficientStockError
		switch {
		case err == nil:
			committed++
		case errors.As(err, &stockErr):
			short++
		default:
			t.Fatalf("unexpected error from racing commit: %v", err)
		}
	}
	assert.Equal(t, 5, committed, "Expected exactly as many commits as there was stock")
	assert.Equal(t, attempts-5, short, "Expected the rest to be rejected as short")

	got, err := catalogSvc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock, "Expected stock to land on zero, never below")
}

func TestCommit_ErrorTypes(t *testing.T) {
	// InsufficientStockError must stay distinguishable from the sentinels.
	err := error(&sales.InsufficientStockError{Items: []sales.StockShortage{{ProductID: "p"}}})
	assert.False(t, errors.Is(err, sales.ErrInvalidLine))
	assert.False(t, errors.Is(err, sales.ErrRegisterClosed))
}
