package graphql_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/auth/infrastructure/security"
	gatewayapp "github.com/wyfcoding/storefront/internal/gateway/application"
	gql "github.com/wyfcoding/storefront/internal/gateway/interfaces/graphql"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/db/dbtest"
)

type gqlError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

func (r gqlResponse) code() string {
	if len(r.Errors) == 0 {
		return ""
	}
	code, _ := r.Errors[0].Extensions["code"].(string)
	return code
}

type server struct {
	t        *testing.T
	router   *gin.Engine
	database *db.DB
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := dbtest.New(t, gatewayapp.Models()...)
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	svc := gatewayapp.NewServices(gatewayapp.Options{
		DB:    database,
		Cache: rc,
		Auth: config.AuthConfig{
			JWTSecret:  "0123456789abcdef0123456789abcdef",
			Issuer:     "storefront",
			TokenTTL:   60,
			BcryptCost: security.MinBcryptCost,
		},
		ProductTTL: time.Minute,
	})
	schema, err := gql.NewSchema(gql.NewResolver(svc.Auth, svc.Users, svc.Catalog, svc.Cart, svc.Orders))
	require.NoError(t, err)

	r := gin.New()
	gql.NewHandler(schema).RegisterRoutes(r, svc.Auth)
	return &server{t: t, router: r, database: database}
}

func (s *server) exec(token, query string, variables map[string]any) (int, gqlResponse) {
	s.t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	require.NoError(s.t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp gqlResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

// data 断言无错误并解析 data
func (s *server) data(token, query string, variables map[string]any, dest any) {
	s.t.Helper()
	_, resp := s.exec(token, query, variables)
	require.Empty(s.t, resp.Errors, "unexpected errors: %+v", resp.Errors)
	require.NoError(s.t, json.Unmarshal(resp.Data, dest))
}

func (s *server) register(email string) string {
	s.t.Helper()
	var out struct {
		Register struct{ Token string }
	}
	s.data("", `mutation($in: RegisterInput!) { register(input: $in) { token } }`,
		map[string]any{"in": map[string]any{"email": email, "password": "secret123", "name": "Buyer"}}, &out)
	return out.Register.Token
}

func (s *server) adminToken() string {
	s.t.Helper()
	hash, err := security.NewBcryptHasher(security.MinBcryptCost).Hash("admin-pass")
	require.NoError(s.t, err)
	require.NoError(s.t, s.database.DB.Create(&userdomain.User{
		Email:        "admin@shop.test",
		PasswordHash: hash,
		Name:         "Admin",
		Role:         userdomain.RoleAdmin,
		Active:       true,
	}).Error)

	var out struct {
		Login struct {
			Token string
			User  struct{ Role string }
		}
	}
	s.data("", `mutation { login(email: "admin@shop.test", password: "admin-pass") { token user { role } } }`, nil, &out)
	require.Equal(s.t, "ADMIN", out.Login.User.Role)
	return out.Login.Token
}

// seedProduct 以管理员身份创建分类与商品，返回商品 ID
func (s *server) seedProduct(admin, price string, stock int) string {
	s.t.Helper()
	var cat struct {
		CreateCategory struct{ ID string }
	}
	s.data(admin, `mutation { createCategory(input: {name: "Tools"}) { id } }`, nil, &cat)

	var prod struct {
		CreateProduct struct {
			ID    string
			Price string
		}
	}
	s.data(admin, `mutation($in: CreateProductInput!) { createProduct(input: $in) { id price } }`,
		map[string]any{"in": map[string]any{
			"name":       "Hammer",
			"price":      price,
			"stock":      stock,
			"categoryId": cat.CreateCategory.ID,
		}}, &prod)
	return prod.CreateProduct.ID
}

const orderFields = `{ id orderNumber total status userId items { quantity price subtotal product { id stock } } }`

func orderInput(productID string, qty int) map[string]any {
	return map[string]any{
		"items":           []map[string]any{{"productId": productID, "quantity": qty}},
		"customerName":    "Jane",
		"customerEmail":   "jane@example.com",
		"shippingAddress": "1 Main St",
	}
}

func TestRegisterAndMe(t *testing.T) {
	s := newServer(t)
	token := s.register("Buyer@Example.com")
	require.NotEmpty(t, token)

	var out struct {
		Me struct {
			Email string
			Role  string
		}
	}
	s.data(token, `{ me { email role } }`, nil, &out)
	assert.Equal(t, "buyer@example.com", out.Me.Email)
	assert.Equal(t, "CLIENT", out.Me.Role)

	_, resp := s.exec("", `{ me { email } }`, nil)
	assert.Equal(t, "UNAUTHENTICATED", resp.code())
}

func TestInvalidTokenRejected(t *testing.T) {
	s := newServer(t)
	code, resp := s.exec("not-a-token", `{ categories { id } }`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHENTICATED", resp.code())
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newServer(t)
	token := s.register("a@example.com")

	var out struct{ Logout bool }
	s.data(token, `mutation { logout }`, nil, &out)
	assert.True(t, out.Logout)

	code, resp := s.exec(token, `{ me { email } }`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHENTICATED", resp.code())
}

func TestClientCannotManageCatalog(t *testing.T) {
	s := newServer(t)
	token := s.register("c@example.com")

	_, resp := s.exec(token, `mutation { createCategory(input: {name: "X"}) { id } }`, nil)
	assert.Equal(t, "FORBIDDEN", resp.code())

	_, resp = s.exec(token, `{ orders { id } }`, nil)
	assert.Equal(t, "FORBIDDEN", resp.code())

	_, resp = s.exec(token, `mutation { updateUser(id: "1", input: {role: ADMIN}) { id } }`, nil)
	assert.Equal(t, "FORBIDDEN", resp.code())
}

func TestCheckoutFlow(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()
	productID := s.seedProduct(admin, "10", 5)
	buyer := s.register("buyer@example.com")

	var added struct {
		AddToCart struct {
			Quantity int
			Subtotal string
		}
	}
	s.data(buyer, fmt.Sprintf(`mutation { addToCart(productId: "%s", quantity: 2) { quantity subtotal } }`, productID), nil, &added)
	assert.Equal(t, 2, added.AddToCart.Quantity)
	assert.Equal(t, "20.00", added.AddToCart.Subtotal)

	var placed struct {
		CreateOrder struct {
			OrderNumber string
			Total       string
			Status      string
			UserID      *string
			Items       []struct {
				Quantity int
				Price    string
				Subtotal string
				Product  struct{ Stock int }
			}
		}
	}
	s.data(buyer, `mutation($in: CreateOrderInput!) { createOrder(input: $in) `+orderFields+` }`,
		map[string]any{"in": orderInput(productID, 3)}, &placed)
	o := placed.CreateOrder
	assert.Equal(t, "ORD-001", o.OrderNumber)
	assert.Equal(t, "30.00", o.Total)
	assert.Equal(t, "PENDING", o.Status)
	require.NotNil(t, o.UserID)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "10.00", o.Items[0].Price)
	assert.Equal(t, 2, o.Items[0].Product.Stock)

	var cart struct {
		Cart struct {
			ItemCount int
			Total     string
		}
	}
	s.data(buyer, `{ cart { itemCount total } }`, nil, &cart)
	assert.Equal(t, 0, cart.Cart.ItemCount)
	assert.Equal(t, "0.00", cart.Cart.Total)

	var mine struct {
		MyOrders []struct{ OrderNumber string }
	}
	s.data(buyer, `{ myOrders { orderNumber } }`, nil, &mine)
	require.Len(t, mine.MyOrders, 1)

	_, resp := s.exec(buyer, `mutation($in: CreateOrderInput!) { createOrder(input: $in) { id } }`,
		map[string]any{"in": orderInput(productID, 3)})
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.code())
}

func TestGuestOrderAndVisibility(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()
	productID := s.seedProduct(admin, "4.50", 10)

	var guest struct {
		CreateGuestOrder struct {
			ID          string
			OrderNumber string
			Total       string
			UserID      *string
		}
	}
	s.data("", `mutation($in: CreateOrderInput!) { createGuestOrder(input: $in) { id orderNumber total userId } }`,
		map[string]any{"in": orderInput(productID, 2)}, &guest)
	assert.Nil(t, guest.CreateGuestOrder.UserID)
	assert.Equal(t, "9.00", guest.CreateGuestOrder.Total)

	var byNumber struct {
		OrderByNumber struct{ ID string }
	}
	s.data("", fmt.Sprintf(`{ orderByNumber(orderNumber: "%s") { id } }`, guest.CreateGuestOrder.OrderNumber), nil, &byNumber)
	assert.Equal(t, guest.CreateGuestOrder.ID, byNumber.OrderByNumber.ID)

	owner := s.register("owner@example.com")
	var placed struct {
		CreateOrder struct{ ID string }
	}
	s.data(owner, `mutation($in: CreateOrderInput!) { createOrder(input: $in) { id } }`,
		map[string]any{"in": orderInput(productID, 1)}, &placed)

	other := s.register("other@example.com")
	query := fmt.Sprintf(`{ order(id: "%s") { id } }`, placed.CreateOrder.ID)
	_, resp := s.exec(other, query, nil)
	assert.Equal(t, "FORBIDDEN", resp.code())

	var seen struct {
		Order struct{ ID string }
	}
	s.data(admin, query, nil, &seen)
	assert.Equal(t, placed.CreateOrder.ID, seen.Order.ID)
}

func TestOrderErrorsCarryCodes(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()
	productID := s.seedProduct(admin, "1", 1)

	tests := []struct {
		name string
		in   map[string]any
		code string
	}{
		{"unknown product", orderInput("999", 1), "NOT_FOUND"},
		{"zero quantity", orderInput(productID, 0), "VALIDATION"},
		{"no items", map[string]any{
			"items":           []map[string]any{},
			"customerName":    "Jane",
			"customerEmail":   "jane@example.com",
			"shippingAddress": "1 Main St",
		}, "VALIDATION"},
		{"bad email", func() map[string]any {
			in := orderInput(productID, 1)
			in["customerEmail"] = "nope"
			return in
		}(), "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp := s.exec("", `mutation($in: CreateOrderInput!) { createGuestOrder(input: $in) { id } }`,
				map[string]any{"in": tt.in})
			assert.Equal(t, tt.code, resp.code())
		})
	}

	_, resp := s.exec(admin, `mutation { updateOrderStatus(id: "1", status: "LOST") { id } }`, nil)
	assert.Equal(t, "VALIDATION", resp.code())
}

func TestMalformedQueryIsValidationError(t *testing.T) {
	s := newServer(t)
	_, resp := s.exec("", `{ nope }`, nil)
	assert.Equal(t, "VALIDATION", resp.code())
}
