package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/restaus/restaus-backend/internal/auth"
	"github.com/restaus/restaus-backend/internal/menus"
	"github.com/restaus/restaus-backend/internal/orders"
	"github.com/restaus/restaus-backend/internal/payments"
	"github.com/restaus/restaus-backend/internal/tables"
	pkgauth "github.com/restaus/restaus-backend/pkg/auth"
	"github.com/restaus/restaus-backend/pkg/config"
	"github.com/restaus/restaus-backend/pkg/enums"
	"github.com/restaus/restaus-backend/pkg/logger"
	"github.com/restaus/restaus-backend/pkg/pagination"
)

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubTablesService struct{}

func (stubTablesService) ListTables(context.Context) ([]tables.TableDTO, error) {
	return []tables.TableDTO{}, nil
}

func (stubTablesService) GetTable(context.Context, uuid.UUID) (*tables.TableDTO, error) {
	return &tables.TableDTO{}, nil
}

func (stubTablesService) CreateTable(context.Context, tables.CreateTableInput) (*tables.TableDTO, error) {
	return &tables.TableDTO{}, nil
}

func (stubTablesService) UpdateTable(context.Context, uuid.UUID, tables.UpdateTableInput) (*tables.TableDTO, error) {
	return &tables.TableDTO{}, nil
}

func (stubTablesService) DeleteTable(context.Context, uuid.UUID) error {
	return nil
}

type stubMenusService struct{}

func (stubMenusService) ListMenus(context.Context, menus.ListFilters) ([]menus.MenuDTO, error) {
	return []menus.MenuDTO{}, nil
}

func (stubMenusService) GetMenu(context.Context, uuid.UUID) (*menus.MenuDTO, error) {
	return &menus.MenuDTO{}, nil
}

func (stubMenusService) CreateMenu(context.Context, menus.CreateMenuInput) (*menus.MenuDTO, error) {
	return &menus.MenuDTO{}, nil
}

func (stubMenusService) UpdateMenu(context.Context, uuid.UUID, menus.UpdateMenuInput) (*menus.MenuDTO, error) {
	return &menus.MenuDTO{}, nil
}

func (stubMenusService) DeleteMenu(context.Context, uuid.UUID) error {
	return nil
}

func (stubMenusService) ListCategories(context.Context) ([]menus.CategoryDTO, error) {
	return []menus.CategoryDTO{}, nil
}

func (stubMenusService) CreateCategory(context.Context, menus.CreateCategoryInput) (*menus.CategoryDTO, error) {
	return &menus.CategoryDTO{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) PlaceOrder(context.Context, orders.PlaceOrderInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrdersService) GetOrder(context.Context, uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrdersService) ListOrders(context.Context, pagination.Params, orders.ListFilters) (*orders.OrderList, error) {
	return &orders.OrderList{Orders: []orders.OrderDTO{}}, nil
}

func (stubOrdersService) UpdateItemStatus(context.Context, orders.UpdateItemStatusInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrdersService) UpdateStatus(context.Context, orders.UpdateStatusInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrdersService) CancelOrder(context.Context, uuid.UUID, uuid.UUID, string) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) ProcessPayment(context.Context, payments.ProcessPaymentInput) (*payments.PaymentDTO, error) {
	return &payments.PaymentDTO{}, nil
}

func (stubPaymentsService) GetPayment(context.Context, uuid.UUID) (*payments.PaymentDTO, error) {
	return &payments.PaymentDTO{}, nil
}

func (stubPaymentsService) ListPayments(context.Context, pagination.Params, payments.ListFilters) (*payments.PaymentList, error) {
	return &payments.PaymentList{Payments: []payments.PaymentDTO{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "restaus-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Cfg:             cfg,
		Logg:            logg,
		AuthService:     stubAuthService{},
		TablesService:   stubTablesService{},
		MenusService:    stubMenusService{},
		OrdersService:   stubOrdersService{},
		PaymentsService: stubPaymentsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "router-test",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestProtectedRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestTableCreateRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"table_number":"T1","capacity":4}`

	waiter := httptest.NewRequest(http.MethodPost, "/api/v1/tables", strings.NewReader(body))
	waiter.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleWaiter))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, waiter)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for waiter got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, "/api/v1/tables", strings.NewReader(body))
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin got %d", resp.Code)
	}
}

func TestPaymentProcessRequiresCashier(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := fmt.Sprintf(`{"order_id":%q,"method":"cash","amount_paid":"25.00"}`, uuid.NewString())

	kitchen := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	kitchen.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleKitchen))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, kitchen)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for kitchen got %d", resp.Code)
	}

	cashier := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	cashier.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, cashier)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for cashier got %d", resp.Code)
	}
}

func TestMenuDeleteRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	target := "/api/v1/menus/" + uuid.NewString()

	waiter := httptest.NewRequest(http.MethodDelete, target, nil)
	waiter.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleWaiter))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, waiter)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for waiter got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestUserDeleteRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier got %d", resp.Code)
	}
}

func TestOrderPlaceAllowsWaiter(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := fmt.Sprintf(`{"order_type":"take_away","items":[{"menu_id":%q,"quantity":1}]}`, uuid.NewString())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleWaiter))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for waiter got %d", resp.Code)
	}
}

func TestKitchenCannotPlaceOrders(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := fmt.Sprintf(`{"order_type":"take_away","items":[{"menu_id":%q,"quantity":1}]}`, uuid.NewString())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleKitchen))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for kitchen got %d", resp.Code)
	}
}
