package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"api_pos/api"
	"api_pos/internal/auth"
	"api_pos/internal/cash"
	"api_pos/internal/catalog"
	"api_pos/internal/config"
	"api_pos/internal/ledger"
	"api_pos/internal/sales"
	"api_pos/internal/storage/sqlite"
)

type testServer struct {
	router *gin.Engine
	store  *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.New(":memory:")
	require.NoError(t, err, "Expected in-memory store to open")
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{
		Addr:          ":0",
		JWTSecret:     "test-secret",
		TokenDuration: time.Hour,
		CORSOrigins:   []string{"*"},
		DefaultPosID:  "PV-TEST",
		AdminUser:     "admin",
		AdminPassword: "admin1234",
	}

	ctx := context.Background()
	authenticator := auth.NewAuthenticator(store)
	require.NoError(t, authenticator.SeedAdmin(ctx, cfg.AdminUser, cfg.AdminPassword))

	hash, err := bcrypt.GenerateFromPassword([]byte("employee1234"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(ctx, &auth.User{
		ID:           uuid.NewString(),
		Username:     "cashier",
		PasswordHash: string(hash),
		Role:         auth.RoleEmployee,
		CreatedAt:    time.Now(),
	}))

	router := gin.New()
	api.InitRoutes(router, cfg, store, zaptest.NewLogger(t))
	return &testServer{router: router, store: store}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "Expected login to succeed: %s", w.Body)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (ts *testServer) createProduct(t *testing.T, token, barcode, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/products", token, map[string]any{
		"barcode": barcode,
		"name":    name,
		"price":   decimal.NewFromInt(price),
		"stock":   stock,
	})
	require.Equal(t, http.StatusCreated, w.Code, "Expected product creation to succeed: %s", w.Body)

	var p catalog.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return &p
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)

	t.Run("bad credentials rejected", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
			"username": "admin", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/products", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/products", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me echoes identity", func(t *testing.T) {
		token := ts.login(t, "cashier", "employee1234")
		w := ts.do(t, http.MethodGet, "/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var me struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
		assert.Equal(t, "cashier", me.Username)
		assert.Equal(t, auth.RoleEmployee, me.Role)
	})

	t.Run("employee cannot mutate catalog", func(t *testing.T) {
		token := ts.login(t, "cashier", "employee1234")
		w := ts.do(t, http.MethodPost, "/products", token, map[string]any{
			"barcode": "1", "name": "X",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("employee can sell", func(t *testing.T) {
		admin := ts.login(t, "admin", "admin1234")
		employee := ts.login(t, "cashier", "employee1234")
		p := ts.createProduct(t, admin, "900", "Gum", 100, 5)

		w := ts.do(t, http.MethodPost, "/cash/open", employee, map[string]any{
			"opening_amount": decimal.NewFromInt(0),
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = ts.do(t, http.MethodPost, "/sales", employee, map[string]any{
			"items": []map[string]any{{"product": p.ID, "qty": 1}},
			"total": decimal.NewFromInt(100),
		})
		assert.Equal(t, http.StatusCreated, w.Code, "Expected employee sale to commit: %s", w.Body)
	})
}

func TestSaleFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin", "admin1234")
	p := ts.createProduct(t, admin, "7791234567890", "Cola 1.5L", 600, 10)

	t.Run("sale rejected while register closed", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/sales", admin, map[string]any{
			"items": []map[string]any{{"product": p.ID, "qty": 1}},
			"total": decimal.NewFromInt(600),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("open register", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/cash/open", admin, map[string]any{
			"opening_amount": decimal.NewFromInt(1000),
		})
		require.Equal(t, http.StatusCreated, w.Code, "Expected open to succeed: %s", w.Body)
	})

	t.Run("double open conflicts", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/cash/open", admin, map[string]any{
			"opening_amount": decimal.NewFromInt(500),
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("sale commits and decrements stock", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/sales", admin, map[string]any{
			"items": []map[string]any{{
				"product": p.ID,
				"qty":     2,
				"price":   decimal.NewFromInt(600),
				"total":   decimal.NewFromInt(1200),
			}},
			"subtotal": decimal.NewFromInt(1200),
			"total":    decimal.NewFromInt(1200),
		})
		require.Equal(t, http.StatusCreated, w.Code, "Expected sale to commit: %s", w.Body)

		var sale sales.Sale
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
		assert.Equal(t, "admin", sale.User)
		assert.Equal(t, sales.PaymentCash, sale.PaymentMethod)
		require.Len(t, sale.Items, 1)
		assert.Equal(t, "Cola 1.5L", sale.Items[0].ProductName)

		pw := ts.do(t, http.MethodGet, "/products/"+p.ID, admin, nil)
		require.Equal(t, http.StatusOK, pw.Code)
		var got catalog.Product
		require.NoError(t, json.Unmarshal(pw.Body.Bytes(), &got))
		assert.Equal(t, 8, got.Stock, "Expected stock 10 -> 8")
	})

	t.Run("status reflects cash sale", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/cash/status", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var status cash.Status
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.True(t, status.Open)
		require.NotNil(t, status.CurrentAmount)
		assert.True(t, status.CurrentAmount.Equal(decimal.NewFromInt(2200)),
			"Expected 1000 opening + 1200 cash sale, got %s", status.CurrentAmount)
	})

	t.Run("insufficient stock lists shortage", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/sales", admin, map[string]any{
			"items": []map[string]any{{"product": p.ID, "qty": 50}},
			"total": decimal.NewFromInt(30000),
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp struct {
			Detail string                `json:"detail"`
			Items  []sales.StockShortage `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Insufficient stock", resp.Detail)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 8, resp.Items[0].Available)
		assert.Equal(t, 50, resp.Items[0].Need)
	})
}

func TestCashReconciliationFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin", "admin1234")
	p := ts.createProduct(t, admin, "100", "Water", 300, 10)

	w := ts.do(t, http.MethodPost, "/cash/open", admin, map[string]any{
		"opening_amount": decimal.NewFromInt(1000),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/cash/move", admin, map[string]any{
		"type": cash.MovementIn, "amount": decimal.NewFromInt(200), "reason": "change",
	})
	require.Equal(t, http.StatusCreated, w.Code, "Expected inflow to record: %s", w.Body)

	w = ts.do(t, http.MethodPost, "/cash/move", admin, map[string]any{
		"type": cash.MovementOut, "amount": decimal.NewFromInt(50), "reason": "supplier",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/sales", admin, map[string]any{
		"items": []map[string]any{{"product": p.ID, "qty": 1, "price": decimal.NewFromInt(300), "total": decimal.NewFromInt(300)}},
		"total": decimal.NewFromInt(300),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Expected cash: 1000 + 200 - 50 + 300 = 1450; counting 1400 leaves -50.
	w = ts.do(t, http.MethodPost, "/cash/close", admin, map[string]any{
		"closing_amount": decimal.NewFromInt(1400),
	})
	require.Equal(t, http.StatusOK, w.Code, "Expected close to succeed: %s", w.Body)

	w = ts.do(t, http.MethodGet, "/cash/summary", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary cash.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.True(t, summary.ExpectedCash.Equal(decimal.NewFromInt(1450)))
	assert.True(t, summary.Difference.Equal(decimal.NewFromInt(-50)))

	t.Run("movement after close conflicts", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/cash/move", admin, map[string]any{
			"type": cash.MovementIn, "amount": decimal.NewFromInt(10),
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("csv export", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/cash/summary.csv", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		assert.Contains(t, w.Body.String(), "Field,Value")
		assert.Contains(t, w.Body.String(), "Expected cash,1450")
		assert.Contains(t, w.Body.String(), "Difference,-50")
	})
}

func TestCustomerAccountFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin", "admin1234")

	w := ts.do(t, http.MethodPost, "/customers", admin, map[string]any{
		"name":         "Maria Lopez",
		"document":     "30123456",
		"credit_limit": decimal.NewFromInt(5000),
	})
	require.Equal(t, http.StatusCreated, w.Code, "Expected customer creation to succeed: %s", w.Body)

	var customer ledger.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))

	t.Run("payment with no debt drives balance negative", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, fmt.Sprintf("/accounts/%s/pay", customer.ID), admin, map[string]any{
			"amount": decimal.NewFromInt(500), "notes": "deposit",
		})
		require.Equal(t, http.StatusCreated, w.Code, "Expected payment to record: %s", w.Body)

		sw := ts.do(t, http.MethodGet, fmt.Sprintf("/accounts/%s/statement", customer.ID), admin, nil)
		require.Equal(t, http.StatusOK, sw.Code)

		var st ledger.Statement
		require.NoError(t, json.Unmarshal(sw.Body.Bytes(), &st))
		assert.True(t, st.Balance.Equal(decimal.NewFromInt(-500)), "Expected balance -500, got %s", st.Balance)
		require.Len(t, st.Entries, 1)
		assert.Equal(t, ledger.EntryCredit, st.Entries[0].Type)
	})

	t.Run("invalid payment amount", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, fmt.Sprintf("/accounts/%s/pay", customer.ID), admin, map[string]any{
			"amount": decimal.Zero,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown customer is 404", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/accounts/nope/statement", admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("accounts summary lists non-zero balances", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/accounts/summary", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var rows []ledger.BalanceRow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, customer.ID, rows[0].CustomerID)
	})

	t.Run("credit info", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, fmt.Sprintf("/customers/%s/credit", customer.ID), admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var info struct {
			CreditLimit decimal.Decimal `json:"credit_limit"`
			Balance     decimal.Decimal `json:"balance"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
		assert.True(t, info.CreditLimit.Equal(decimal.NewFromInt(5000)))
		assert.True(t, info.Balance.Equal(decimal.NewFromInt(-500)))
	})
}

func TestReports(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin", "admin1234")
	p := ts.createProduct(t, admin, "100", "Water", 600, 10)

	w := ts.do(t, http.MethodPost, "/cash/open", admin, map[string]any{
		"opening_amount": decimal.NewFromInt(0),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	for n := 0; n < 2; n++ {
		w = ts.do(t, http.MethodPost, "/sales", admin, map[string]any{
			"items": []map[string]any{{"product": p.ID, "qty": 1, "price": decimal.NewFromInt(600), "total": decimal.NewFromInt(600)}},
			"total": decimal.NewFromInt(600),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("daily", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/reports/daily", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var report struct {
			Count int             `json:"count"`
			Total decimal.Decimal `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, 2, report.Count)
		assert.True(t, report.Total.Equal(decimal.NewFromInt(1200)))
	})

	t.Run("by product", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/reports/by_product", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var rows []struct {
			ProductID string          `json:"product_id"`
			Qty       int             `json:"qty"`
			Total     decimal.Decimal `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, p.ID, rows[0].ProductID)
		assert.Equal(t, 2, rows[0].Qty)
	})

	t.Run("by method", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/reports/by_method", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var rows []struct {
			Method string `json:"method"`
			Count  int    `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, sales.PaymentCash, rows[0].Method)
		assert.Equal(t, 2, rows[0].Count)
	})

	t.Run("bad date rejected", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/reports/daily?date=yesterday", admin, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
