package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/cart"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/catalog"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/checkout"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/credential"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/domain"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/order"
	"github.com/nazeru/shop-lab-ecommerce-go/internal/shop/payment"
	"github.com/nazeru/shop-lab-ecommerce-go/pkg/contracts"
	"github.com/nazeru/shop-lab-ecommerce-go/pkg/idempotency"
	"github.com/nazeru/shop-lab-ecommerce-go/pkg/kafka"
	"github.com/nazeru/shop-lab-ecommerce-go/pkg/logging"
	"github.com/nazeru/shop-lab-ecommerce-go/pkg/metrics"
)

// app wires the in-memory core behind a thin HTTP facade. All business
// rules live in internal/shop; handlers only decode, dispatch and encode.
type app struct {
	cfg      cfg
	creds    *credential.Store
	catalog  *catalog.Catalog
	cartSvc  *cart.Service
	orders   *order.Store
	checkout *checkout.Service
	replays  *idempotency.Replays
	events   *kafka.Publisher // nil when no brokers are configured
	metrics  *metrics.ServerMetrics

	// Session carts. One lock serializes all cart mutations, so Add/Remove
	// are atomic with respect to each other.
	cartMu sync.Mutex
	carts  map[string]domain.Cart
}

func newApp(cfg cfg) *app {
	cat := catalog.Default()
	cartSvc := cart.NewService(cat, catalog.DefaultDiscounts())
	orders := order.NewStore()
	gateway := payment.NewSimulatedGateway()
	gateway.Latency = time.Duration(cfg.PaymentLatencyMS) * time.Millisecond

	a := &app{
		cfg:      cfg,
		creds:    credential.NewStore(),
		catalog:  cat,
		cartSvc:  cartSvc,
		orders:   orders,
		checkout: checkout.NewService(cartSvc, gateway, orders),
		replays:  idempotency.NewReplays(),
		metrics:  metrics.NewServerMetrics("shop_service"),
		carts:    make(map[string]domain.Cart),
	}

	kafkaClient := kafka.NewClient(cfg.KafkaBrokers)
	if kafkaClient.Enabled() {
		a.events = kafkaClient.NewPublisher(cfg.Topic)
	}
	return a
}

func (a *app) close() {
	if a.events != nil {
		_ = a.events.Close()
	}
}

func (a *app) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/register", a.handleRegister)
	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/products", a.handleListProducts)
	mux.HandleFunc("/products/", a.handleGetProduct)
	mux.HandleFunc("/cart/add", a.handleCartAdd)
	mux.HandleFunc("/cart/remove", a.handleCartRemove)
	mux.HandleFunc("/cart/total", a.handleCartTotal)
	mux.HandleFunc("/checkout", a.handleCheckout)
	mux.HandleFunc("/orders/", a.handleOrder)
	return mux
}

func (a *app) observe(handler string, status int, start time.Time) {
	a.metrics.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	a.metrics.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
}

func (a *app) publish(r *http.Request, eventType, orderID, txID string, payload map[string]any) {
	if a.events == nil {
		return
	}
	if err := a.events.Publish(r.Context(), eventType, orderID, txID, payload); err != nil {
		logging.Log(logging.Fields{Service: "shop-service", OrderID: orderID, Step: "publish_event", Status: "error", Message: err.Error()})
	}
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *app) handleRegister(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req credentialsRequest
	if code, msg := decodePost(r, &req); code != 0 {
		writeJSON(w, code, map[string]any{"error": msg})
		a.observe("register", code, start)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "email and password are required"})
		a.observe("register", http.StatusBadRequest, start)
		return
	}
	if !a.creds.Register(req.Email, req.Password) {
		writeJSON(w, http.StatusConflict, map[string]any{"registered": false, "error": "email already registered"})
		a.observe("register", http.StatusConflict, start)
		return
	}
	a.publish(r, contracts.EventUserRegistered, "", "", map[string]any{"email": req.Email})
	logging.Log(logging.Fields{Service: "shop-service", Email: req.Email, Step: "register", Status: "created"})
	writeJSON(w, http.StatusOK, map[string]any{"registered": true})
	a.observe("register", http.StatusOK, start)
}

func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req credentialsRequest
	if code, msg := decodePost(r, &req); code != 0 {
		writeJSON(w, code, map[string]any{"error": msg})
		a.observe("login", code, start)
		return
	}
	if !a.creds.Authenticate(req.Email, req.Password) {
		// Unknown email and wrong password are deliberately the same answer.
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		a.observe("login", http.StatusUnauthorized, start)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true})
	a.observe("login", http.StatusOK, start)
}

type productDTO struct {
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

func toProductDTO(p domain.Product) productDTO {
	return productDTO{SKU: string(p.SKU), Name: p.Name, Price: p.Price, Stock: p.Stock}
}

func (a *app) handleListProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		a.observe("products", http.StatusMethodNotAllowed, start)
		return
	}
	products := map[string]productDTO{}
	for sku, p := range a.catalog.List() {
		products[string(sku)] = toProductDTO(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
	a.observe("products", http.StatusOK, start)
}

func (a *app) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		a.observe("product", http.StatusMethodNotAllowed, start)
		return
	}
	sku := strings.TrimPrefix(r.URL.Path, "/products/")
	p, ok := a.catalog.Get(domain.SKU(sku))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "sku not found"})
		a.observe("product", http.StatusNotFound, start)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
	a.observe("product", http.StatusOK, start)
}

type cartRequest struct {
	CartID string `json:"cart_id"`
	SKU    string `json:"sku"`
	Qty    *int   `json:"qty"` // omitted means 1
}

func (r cartRequest) quantity() int {
	if r.Qty == nil {
		return 1
	}
	return *r.Qty
}

func (a *app) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req cartRequest
	if code, msg := decodePost(r, &req); code != 0 {
		writeJSON(w, code, map[string]any{"error": msg})
		a.observe("cart_add", code, start)
		return
	}

	a.cartMu.Lock()
	cartID := req.CartID
	if cartID == "" {
		cartID = uuid.NewString()
		a.carts[cartID] = domain.Cart{}
	}
	c, ok := a.carts[cartID]
	if !ok {
		a.cartMu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "cart not found"})
		a.observe("cart_add", http.StatusNotFound, start)
		return
	}
	err := a.cartSvc.Add(c, domain.SKU(req.SKU), req.quantity())
	items := c.Clone()
	a.cartMu.Unlock()

	if err != nil {
		code := cartErrorStatus(err)
		writeJSON(w, code, map[string]any{"cart_id": cartID, "error": err.Error()})
		a.observe("cart_add", code, start)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart_id": cartID, "items": items})
	a.observe("cart_add", http.StatusOK, start)
}

func (a *app) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req cartRequest
	if code, msg := decodePost(r, &req); code != 0 {
		writeJSON(w, code, map[string]any{"error": msg})
		a.observe("cart_remove", code, start)
		return
	}

	a.cartMu.Lock()
	c, ok := a.carts[req.CartID]
	if !ok {
		a.cartMu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "cart not found"})
		a.observe("cart_remove", http.StatusNotFound, start)
		return
	}
	a.cartSvc.Remove(c, domain.SKU(req.SKU), req.quantity())
	items := c.Clone()
	a.cartMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"cart_id": req.CartID, "items": items})
	a.observe("cart_remove", http.StatusOK, start)
}

func (a *app) handleCartTotal(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		a.observe("cart_total", http.StatusMethodNotAllowed, start)
		return
	}
	cartID := r.URL.Query().Get("cart_id")
	code := r.URL.Query().Get("code")

	a.cartMu.Lock()
	c, ok := a.carts[cartID]
	if ok {
		c = c.Clone()
	}
	a.cartMu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "cart not found"})
		a.observe("cart_total", http.StatusNotFound, start)
		return
	}

	subtotal := a.cartSvc.Subtotal(c)
	writeJSON(w, http.StatusOK, map[string]any{
		"cart_id":  cartID,
		"subtotal": subtotal,
		"total":    a.cartSvc.ApplyDiscount(subtotal, code),
	})
	a.observe("cart_total", http.StatusOK, start)
}

type checkoutRequest struct {
	CartID   string `json:"cart_id"`
	Email    string `json:"email"`
	Code     string `json:"code"`
	Provider string `json:"provider"`
}

func (a *app) handleCheckout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req checkoutRequest
	if code, msg := decodePost(r, &req); code != 0 {
		writeJSON(w, code, map[string]any{"error": msg})
		a.observe("checkout", code, start)
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "email is required"})
		a.observe("checkout", http.StatusBadRequest, start)
		return
	}
	provider := req.Provider
	if provider == "" {
		provider = a.cfg.PaymentProvider
	}

	// Same idempotency key, same order: replay instead of charging twice.
	idemKey := idempotency.Key(r)
	if idemKey != "" {
		if existing, ok := a.replays.Lookup(idemKey); ok {
			writeJSON(w, http.StatusOK, map[string]any{"order_id": existing, "status": "IDEMPOTENT_REPLAY"})
			a.observe("checkout", http.StatusOK, start)
			return
		}
	}

	a.cartMu.Lock()
	c, ok := a.carts[req.CartID]
	if ok {
		c = c.Clone()
	}
	a.cartMu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "cart not found"})
		a.observe("checkout", http.StatusNotFound, start)
		return
	}

	res, err := a.checkout.Checkout(r.Context(), req.Email, c, req.Code, provider)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentDeclined) {
			writeJSON(w, http.StatusPaymentRequired, map[string]any{"error": err.Error()})
			a.observe("checkout", http.StatusPaymentRequired, start)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		a.observe("checkout", http.StatusInternalServerError, start)
		return
	}

	// The cart is committed to the order snapshot; drop the session cart.
	a.cartMu.Lock()
	delete(a.carts, req.CartID)
	a.cartMu.Unlock()
	a.replays.Remember(idemKey, string(res.OrderID))

	a.publish(r, contracts.EventOrderCreated, string(res.OrderID), res.TxID, map[string]any{"email": req.Email, "total": res.Total.String()})
	a.publish(r, contracts.EventPaymentCaptured, string(res.OrderID), res.TxID, map[string]any{"provider": provider})

	writeJSON(w, http.StatusOK, map[string]any{
		"order_id": res.OrderID,
		"tx_id":    res.TxID,
		"status":   domain.OrderStatusPaid,
		"total":    res.Total,
	})
	a.observe("checkout", http.StatusOK, start)
}

func (a *app) handleOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		a.observe("order", http.StatusMethodNotAllowed, start)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/orders/")
	ord, ok := a.orders.Get(domain.OrderID(id))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "order not found"})
		a.observe("order", http.StatusNotFound, start)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_id": ord.ID,
		"email":    ord.Email,
		"items":    ord.Items,
		"total":    ord.Total,
		"status":   ord.Status,
	})
	a.observe("order", http.StatusOK, start)
}

func cartErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrSKUNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodePost enforces POST + JSON body; a zero code means OK.
func decodePost(r *http.Request, dst any) (int, string) {
	if r.Method != http.MethodPost {
		return http.StatusMethodNotAllowed, "method not allowed"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return http.StatusBadRequest, "invalid json"
	}
	return 0, ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
