package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alfajarsadiq/admincontrol/internal/session"
	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// stubStore is a minimal in-memory rendition of the order store's wire
// contract, just enough to exercise the client's mapping behavior.
type stubStore struct {
	mu            sync.Mutex
	order         *models.Order
	password      string
	statusGets    int
	editRequests  int
	lastAuth      string
	rejectBearers bool
}

func newStubStore() *stubStore {
	return &stubStore{
		order: &models.Order{
			OrderID:      "ORD-10001",
			Salesperson:  "Asha",
			CompanyName:  "Crescent Traders",
			DeliveryDate: "2026-03-05",
			Status:       models.StatusConfirmed,
			Items: []models.OrderItem{
				{ProductID: "p1", Name: "Basmati Rice 5kg", Quantity: 10},
			},
			CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		},
		password: "correct-pw",
	}
}

func (s *stubStore) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.lastAuth = r.Header.Get("Authorization")

		if s.rejectBearers {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false, "message": "Session expired. Please log in again.",
			})
			return
		}

		switch {
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/orders/status/"):
			id := strings.TrimPrefix(r.URL.Path, "/orders/status/")
			if s.order == nil || s.order.OrderID != id {
				writeJSON(w, http.StatusNotFound, map[string]interface{}{
					"success": false, "message": "Order not found",
				})
				return
			}
			s.statusGets++
			writeJSON(w, http.StatusOK, s.order)

		case r.Method == http.MethodPut && r.URL.Path == "/orders/confirm-dispatch":
			var req models.DispatchRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			s.transition(w, req.OrderID, req.Password, models.StatusConfirmed, models.StatusDispatched, &models.DispatchInfo{
				DriverName:   req.DriverName,
				VehicleName:  req.VehicleName,
				DispatchedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			})

		case r.Method == http.MethodPut && r.URL.Path == "/orders/confirm-delivery":
			var req models.DeliveryRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			s.transition(w, req.OrderID, req.Password, models.StatusDispatched, models.StatusDelivered, nil)

		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/orders/"):
			s.editRequests++
			var req models.EditRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.SalespersonPassword != s.password {
				writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
					"success": false, "message": "Invalid password",
				})
				return
			}
			if req.CompanyName != "" {
				s.order.CompanyName = req.CompanyName
			}
			writeJSON(w, http.StatusOK, models.OrderResponse{Success: true, Message: "Order updated", Order: s.order})

		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/orders/"):
			var req models.DeleteRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Password != s.password {
				writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
					"success": false, "message": "Invalid password",
				})
				return
			}
			s.order = nil
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Order deleted"})

		default:
			http.NotFound(w, r)
		}
	})
}

func (s *stubStore) transition(w http.ResponseWriter, orderID, password string, from, to models.Status, info *models.DispatchInfo) {
	if s.order == nil || s.order.OrderID != orderID {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false, "message": "Order not found",
		})
		return
	}
	if s.order.Status != from {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false, "message": "Order is not in the required status",
		})
		return
	}
	if password != s.password {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false, "message": "Invalid password",
		})
		return
	}
	s.order.Status = to
	if info != nil {
		s.order.DispatchInfo = info
	}
	writeJSON(w, http.StatusOK, models.OrderResponse{Success: true, Message: "ok", Order: s.order})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func newTestClient(t *testing.T, baseURL string) (*Client, *session.Session) {
	t.Helper()
	sess, err := session.Load(filepath.Join(t.TempDir(), "session.json"), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := sess.Update(&models.AdminProfile{ID: "u1", Email: "ops@example.com", Role: models.RoleStandard}, "test-token"); err != nil {
		t.Fatal(err)
	}
	return NewClient(baseURL, sess, testLogger()), sess
}

func TestLifecycleScenario(t *testing.T) {
	// ORD-10001, salesperson Asha: dispatch with the correct password, then a
	// delivery attempt with the wrong password, then the correct one.
	store := newStubStore()
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	ctx := context.Background()

	order, err := client.ConfirmDispatch(ctx, models.DispatchRequest{
		OrderID:     "ORD-10001",
		Salesperson: "Asha",
		Password:    "correct-pw",
		DriverName:  "Raj",
		VehicleName: "Truck-7",
	})
	if err != nil {
		t.Fatalf("ConfirmDispatch: %v", err)
	}
	if order.Status != models.StatusDispatched {
		t.Fatalf("status = %q, want Dispatched", order.Status)
	}
	if order.DispatchInfo == nil || order.DispatchInfo.DriverName != "Raj" || order.DispatchInfo.VehicleName != "Truck-7" {
		t.Fatalf("dispatch info not recorded: %+v", order.DispatchInfo)
	}

	_, err = client.ConfirmDelivery(ctx, models.DeliveryRequest{
		OrderID: "ORD-10001", Salesperson: "Asha", Password: "wrong-pw",
	})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong password err = %v, want ErrInvalidPassword", err)
	}

	snapshot, err := client.Status(ctx, "ORD-10001")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if snapshot.Status != models.StatusDispatched {
		t.Fatalf("status after rejected delivery = %q, want Dispatched", snapshot.Status)
	}

	order, err = client.ConfirmDelivery(ctx, models.DeliveryRequest{
		OrderID: "ORD-10001", Salesperson: "Asha", Password: "correct-pw",
	})
	if err != nil {
		t.Fatalf("ConfirmDelivery retry: %v", err)
	}
	if order.Status != models.StatusDelivered {
		t.Fatalf("status = %q, want Delivered", order.Status)
	}
}

func TestConfirmDeliveryFromConfirmedIsInvalidState(t *testing.T) {
	store := newStubStore()
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)

	_, err := client.ConfirmDelivery(context.Background(), models.DeliveryRequest{
		OrderID: "ORD-10001", Salesperson: "Asha", Password: "correct-pw",
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}

	snapshot, err := client.Status(context.Background(), "ORD-10001")
	if err != nil {
		t.Fatal(err)
	}
	if snapshot.Status != models.StatusConfirmed {
		t.Errorf("status = %q, want unchanged Confirmed", snapshot.Status)
	}
}

func TestStatusReadIsIdempotent(t *testing.T) {
	store := newStubStore()
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)

	first, err := client.Status(context.Background(), "ORD-10001")
	if err != nil {
		t.Fatal(err)
	}
	second, err := client.Status(context.Background(), "ORD-10001")
	if err != nil {
		t.Fatal(err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("consecutive snapshots differ:\n%s\n%s", a, b)
	}
}

func TestStatusNormalizesOrderID(t *testing.T) {
	store := newStubStore()
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)

	order, err := client.Status(context.Background(), "  ord-10001 ")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if order.OrderID != "ORD-10001" {
		t.Errorf("order id = %q", order.OrderID)
	}
}

func TestStatusNotFound(t *testing.T) {
	store := newStubStore()
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)

	_, err := client.Status(context.Background(), "ORD-99999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEditEmptyItemsNeverReachesStore(t *testing.T) {
	store := newStubStore()
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)

	_, err := client.Edit(context.Background(), "ORD-10001", models.EditRequest{
		SalespersonName:     "Asha",
		SalespersonPassword: "correct-pw",
		UpdatedItems:        nil,
	})
	if !errors.Is(err, ErrEmptyItems) {
		t.Fatalf("err = %v, want ErrEmptyItems", err)
	}
	if store.editRequests != 0 {
		t.Errorf("edit requests reached the store: %d", store.editRequests)
	}
}

func TestEditRejectsNonPositiveQuantity(t *testing.T) {
	client, _ := newTestClient(t, "http://unused")

	_, err := client.Edit(context.Background(), "ORD-10001", models.EditRequest{
		SalespersonName:     "Asha",
		SalespersonPassword: "pw",
		UpdatedItems:        []models.ItemSelector{{ProductID: "p1", Quantity: 0}},
	})
	if err == nil {
		t.Error("expected error for zero quantity")
	}
}

func TestDispatchPresenceValidation(t *testing.T) {
	client, _ := newTestClient(t, "http://unused")

	_, err := client.ConfirmDispatch(context.Background(), models.DispatchRequest{
		OrderID:     "ORD-10001",
		Salesperson: "Asha",
		Password:    "pw",
		DriverName:  "", // missing
		VehicleName: "Truck-7",
	})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("err = %v, want ErrMissingFields", err)
	}
}

func TestSessionExpiryTearsDownSession(t *testing.T) {
	store := newStubStore()
	store.rejectBearers = true
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, sess := newTestClient(t, srv.URL)

	var loggedOut bool
	sess.OnTeardown(func() { loggedOut = true })

	_, err := client.Status(context.Background(), "ORD-10001")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if !loggedOut || sess.LoggedIn() {
		t.Error("session must be torn down on a non-password 401")
	}
}

func TestInvalidPasswordDoesNotTearDownSession(t *testing.T) {
	store := newStubStore()
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, sess := newTestClient(t, srv.URL)

	_, err := client.ConfirmDispatch(context.Background(), models.DispatchRequest{
		OrderID:     "ORD-10001",
		Salesperson: "Asha",
		Password:    "wrong-pw",
		DriverName:  "Raj",
		VehicleName: "Truck-7",
	})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("err = %v, want ErrInvalidPassword", err)
	}
	if !sess.LoggedIn() {
		t.Error("per-transition password failure must not log the session out")
	}
}

func TestUnreachableStoreIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	client, _ := newTestClient(t, srv.URL)

	_, err := client.Status(context.Background(), "ORD-10001")
	if !errors.Is(err, ErrTransient) {
		t.Errorf("err = %v, want ErrTransient", err)
	}
}

func TestRequestsCarryBearerToken(t *testing.T) {
	store := newStubStore()
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	if _, err := client.Status(context.Background(), "ORD-10001"); err != nil {
		t.Fatal(err)
	}
	if store.lastAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", store.lastAuth)
	}
}
