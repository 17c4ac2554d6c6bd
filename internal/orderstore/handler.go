package orderstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/alfajarsadiq/admincontrol/internal/access"
	"github.com/alfajarsadiq/admincontrol/internal/reports"
	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

const (
	msgInvalidPassword = "Invalid password"
	msgSessionExpired  = "Session expired. Please log in again."
	msgNotAuthorized   = "You are not authorized to perform this action."
)

type contextKey string

const profileKey contextKey = "profile"

// Handler exposes the order store over HTTP.
type Handler struct {
	service *Service
	logger  *logrus.Logger
}

func NewHandler(service *Service, logger *logrus.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Router builds the route table. Login and the status query are public;
// everything else requires a bearer token and the matching capability.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/auth/login", h.login).Methods("POST")
	r.HandleFunc("/orders/status/{orderId}", h.orderStatus).Methods("GET")

	r.Handle("/auth/logout", h.auth(http.HandlerFunc(h.logout))).Methods("POST")

	r.Handle("/orders", h.guard(access.ActionViewOrders, h.listOrders)).Methods("GET")
	r.Handle("/orders", h.guard(access.ActionCreateOrder, h.createOrder)).Methods("POST")
	r.Handle("/orders/confirm-dispatch", h.guard(access.ActionConfirmDispatch, h.confirmDispatch)).Methods("PUT")
	r.Handle("/orders/confirm-delivery", h.guard(access.ActionConfirmDelivery, h.confirmDelivery)).Methods("PUT")
	r.Handle("/orders/today/locations", h.guard(access.ActionDownloadReports, h.todayLocations)).Methods("GET")
	r.Handle("/orders/download/today", h.guard(access.ActionDownloadReports, h.downloadToday)).Methods("GET")
	r.Handle("/orders/download/by-date", h.guard(access.ActionDownloadReports, h.downloadByDate)).Methods("GET")
	r.Handle("/orders/{orderId}", h.guard(access.ActionEditOrder, h.editOrder)).Methods("PATCH")
	r.Handle("/orders/{orderId}", h.guard(access.ActionDeleteOrder, h.deleteOrder)).Methods("DELETE")

	r.Handle("/salespersons", h.guard(access.ActionManageSalespersons, h.listSalespersons)).Methods("GET")
	r.Handle("/salespersons", h.guard(access.ActionManageSalespersons, h.createSalesperson)).Methods("POST")
	r.Handle("/salespersons/{id}", h.guard(access.ActionManageSalespersons, h.deleteSalesperson)).Methods("DELETE")

	r.Handle("/products", h.guard(access.ActionManageProducts, h.listProducts)).Methods("GET")
	r.Handle("/products", h.guard(access.ActionManageProducts, h.createProduct)).Methods("POST")
	r.Handle("/products/{id}", h.guard(access.ActionManageProducts, h.deleteProduct)).Methods("DELETE")

	r.Handle("/users", h.guard(access.ActionManageUsers, h.listUsers)).Methods("GET")
	r.Handle("/users", h.guard(access.ActionManageUsers, h.createUser)).Methods("POST")
	r.Handle("/users/{id}", h.guard(access.ActionManageUsers, h.deleteUser)).Methods("DELETE")

	return r
}

// auth resolves the bearer token to a profile and stores it in the request
// context. A bad or missing token gets the session-expired message, which the
// dashboard treats as a signal to log out.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondWithError(w, http.StatusUnauthorized, msgSessionExpired)
			return
		}
		profile, ok := h.service.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if !ok {
			respondWithError(w, http.StatusUnauthorized, msgSessionExpired)
			return
		}
		ctx := context.WithValue(r.Context(), profileKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) guard(action access.Action, next http.HandlerFunc) http.Handler {
	return h.auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, _ := r.Context().Value(profileKey).(*models.AdminProfile)
		if profile == nil || !access.Allowed(profile.Role, action) {
			respondWithError(w, http.StatusForbidden, msgNotAuthorized)
			return
		}
		next(w, r)
	}))
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "order-store"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	profile, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			// Deliberately not the password wording: a failed login must not
			// read as a transition credential failure on the client.
			respondWithJSON(w, http.StatusUnauthorized, models.LoginResponse{
				Success: false,
				Message: "Invalid credentials",
			})
			return
		}
		h.logger.WithError(err).Error("Login failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	respondWithJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Profile: profile,
		Token:   token,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	h.service.RevokeToken(strings.TrimPrefix(header, "Bearer "))
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) orderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["orderId"]))
	order, err := h.service.Status(r.Context(), orderID)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req models.NewOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	order, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, models.OrderResponse{
		Success: true,
		Message: "Order created",
		Order:   order,
	})
}

func (h *Handler) confirmDispatch(w http.ResponseWriter, r *http.Request) {
	var req models.DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.OrderID = strings.ToUpper(strings.TrimSpace(req.OrderID))
	order, err := h.service.ConfirmDispatch(r.Context(), req)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.OrderResponse{
		Success: true,
		Message: "Order dispatched",
		Order:   order,
	})
}

func (h *Handler) confirmDelivery(w http.ResponseWriter, r *http.Request) {
	var req models.DeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.OrderID = strings.ToUpper(strings.TrimSpace(req.OrderID))
	order, err := h.service.ConfirmDelivery(r.Context(), req)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.OrderResponse{
		Success: true,
		Message: "Order delivered",
		Order:   order,
	})
}

func (h *Handler) editOrder(w http.ResponseWriter, r *http.Request) {
	var req models.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	orderID := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["orderId"]))
	order, err := h.service.EditOrder(r.Context(), orderID, req)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.OrderResponse{
		Success: true,
		Message: "Order updated",
		Order:   order,
	})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	orderID := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["orderId"]))
	if err := h.service.DeleteOrder(r.Context(), orderID, req.Password); err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.OrderResponse{
		Success: true,
		Message: "Order deleted",
	})
}

func (h *Handler) todayLocations(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.DeliveriesByDate(r.Context(), today(), "")
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]string{"locations": reports.Locations(orders)})
}

func (h *Handler) downloadToday(w http.ResponseWriter, r *http.Request) {
	h.writeDeliveryCSV(w, r, today(), r.URL.Query().Get("location"))
}

func (h *Handler) downloadByDate(w http.ResponseWriter, r *http.Request) {
	h.writeDeliveryCSV(w, r, r.URL.Query().Get("date"), r.URL.Query().Get("location"))
}

func (h *Handler) writeDeliveryCSV(w http.ResponseWriter, r *http.Request, date, location string) {
	orders, err := h.service.DeliveriesByDate(r.Context(), date, location)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.Filename(date, location)))
	if err := reports.WriteDeliveryCSV(w, orders); err != nil {
		h.logger.WithError(err).Error("Failed to write delivery report")
	}
}

func (h *Handler) listSalespersons(w http.ResponseWriter, r *http.Request) {
	sps, err := h.service.ListSalespersons(r.Context())
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sps)
}

func (h *Handler) createSalesperson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	sp, err := h.service.CreateSalesperson(r.Context(), req.Name, req.Password)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, sp)
}

func (h *Handler) deleteSalesperson(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSalesperson(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		DefaultUnits string `json:"defaultUnits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req.Name, req.DefaultUnits)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	u, err := h.service.CreateUser(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, u)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// respondOrderError maps the store error taxonomy onto the wire contract.
func (h *Handler) respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, ErrInvalidState):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidPassword):
		respondWithError(w, http.StatusUnauthorized, msgInvalidPassword)
	case errors.Is(err, ErrDuplicate):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error("Request failed")
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]interface{}{"success": false, "message": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
