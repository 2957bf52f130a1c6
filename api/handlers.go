package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"goflare.io/storefront"
	"goflare.io/storefront/catalog"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
	"goflare.io/storefront/pickup"
)

const featuredCount = 4

type Handler struct {
	svc     storefront.Service
	catalog *catalog.Service
	hub     *Hub
	metrics *Metrics
	logger  *zap.Logger
}

func NewHandler(svc storefront.Service, cat *catalog.Service, hub *Hub, metrics *Metrics, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, catalog: cat, hub: hub, metrics: metrics, logger: logger}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
		WriteJSONError(w, status, code, "")
		return
	}
	WriteJSONError(w, status, code, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// listProducts handles GET /api/products?search=&category=&sort=
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort := enum.ProductSort(q.Get("sort"))
	if sort != "" && !sort.Valid() {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "unknown sort "+string(sort))
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.List(r.Context(), models.ProductQuery{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     sort,
	}))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Categories(r.Context()))
}

func (h *Handler) featured(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Featured(r.Context(), featuredCount))
}

func (h *Handler) offers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Offers())
}

// pickupCenters handles GET /api/pickup-centers?lat=&lng=&radius=
func (h *Handler) pickupCenters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := pickup.DefaultOrigin
	radius := pickup.DefaultRadiusKm

	parse := func(name string, dst *float64) bool {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return true
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", name+" must be a number")
			return false
		}
		*dst = v
		return true
	}
	if !parse("lat", &origin.Lat) || !parse("lng", &origin.Lng) || !parse("radius", &radius) {
		return
	}
	if origin.Lat < -90 || origin.Lat > 90 || origin.Lng < -180 || origin.Lng > 180 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "coordinates out of range")
		return
	}

	centers := pickup.Nearby(origin, radius)
	if centers == nil {
		centers = []models.NearbyCenter{}
	}
	writeJSON(w, http.StatusOK, centers)
}

type addItemRequest struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type quantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Cart(r.Context(), VisitorFromContext(r.Context())))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	view, err := h.svc.AddToCart(r.Context(), VisitorFromContext(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.cartMutations.WithLabelValues("add").Inc()
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req quantityRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.svc.UpdateCartQuantity(r.Context(), VisitorFromContext(r.Context()), id, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.cartMutations.WithLabelValues("update").Inc()
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	view := h.svc.RemoveFromCart(r.Context(), VisitorFromContext(r.Context()), id)
	h.metrics.cartMutations.WithLabelValues("remove").Inc()
	writeJSON(w, http.StatusOK, view)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Session(r.Context(), VisitorFromContext(r.Context())))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "email and password are required")
		return
	}
	sess, err := h.svc.Login(r.Context(), VisitorFromContext(r.Context()), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Logout(r.Context(), VisitorFromContext(r.Context())))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.svc.Checkout(r.Context(), VisitorFromContext(r.Context()), req)
	if err != nil {
		h.metrics.checkouts.WithLabelValues("failed").Inc()
		h.fail(w, r, err)
		return
	}
	h.metrics.checkouts.WithLabelValues("placed").Inc()
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.ParseUint(q.Get("limit"), 10, 64)
	offset, _ := strconv.ParseUint(q.Get("offset"), 10, 64)
	orders, err := h.svc.ListOrders(r.Context(), VisitorFromContext(r.Context()), limit, offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	o, err := h.svc.GetOrder(r.Context(), VisitorFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// nav streams the nav-bar state over a websocket.
func (h *Handler) nav(w http.ResponseWriter, r *http.Request) {
	visitorID := VisitorFromContext(r.Context())
	h.hub.Serve(w, r, visitorID, h.svc.Nav(r.Context(), visitorID))
}
