package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rl1809/borrowhub/internal/adapter/identity"
	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/core/service"
	"github.com/rl1809/borrowhub/internal/port"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const dateLayout = "2006-01-02"

// HTTPHandler is the only surface the UI talks to; it never reaches the
// store directly. Every /api route resolves the bearer token into a
// borrower id before touching a service.
type HTTPHandler struct {
	identity  port.Identity
	borrowers *service.BorrowerDirectory
	inventory *service.InventoryService
	carts     *service.CartService
	history   *service.HistoryService
	log       service.Logger
}

func NewHTTPHandler(
	id port.Identity,
	borrowers *service.BorrowerDirectory,
	inventory *service.InventoryService,
	carts *service.CartService,
	history *service.HistoryService,
	log service.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		identity:  id,
		borrowers: borrowers,
		inventory: inventory,
		carts:     carts,
		history:   history,
		log:       log,
	}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/api/inventory", h.withBorrower(h.listInventory))
	mux.HandleFunc("/api/cart", h.withBorrower(h.getCart))
	mux.HandleFunc("/api/cart/items", h.withBorrower(h.cartItems))
	mux.HandleFunc("/api/cart/submit", h.withBorrower(h.submitCart))
	mux.HandleFunc("/api/requests", h.withBorrower(h.listRequests))
	mux.HandleFunc("/api/transactions", h.withBorrower(h.listTransactions))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type borrowerHandler func(w http.ResponseWriter, r *http.Request, borrowerID int64)

func (h *HTTPHandler) withBorrower(next borrowerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		user, err := h.identity.CurrentUser(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}

		borrowerID, err := h.borrowers.BorrowerIDFor(r.Context(), user.ID)
		if err != nil {
			h.writeError(w, err)
			return
		}

		next(w, r, borrowerID)
	}
}

func (h *HTTPHandler) listInventory(w http.ResponseWriter, r *http.Request, _ int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	items, err := h.inventory.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]inventoryJSON, 0, len(items))
	for _, item := range items {
		out = append(out, inventoryToJSON(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) getCart(w http.ResponseWriter, r *http.Request, borrowerID int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	cart, err := h.carts.GetOrCreateDraft(r.Context(), borrowerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	lines, err := h.carts.ListItems(r.Context(), cart)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{
		Cart:  cartToJSON(cart),
		Items: linesToJSON(lines),
	})
}

func (h *HTTPHandler) cartItems(w http.ResponseWriter, r *http.Request, borrowerID int64) {
	switch r.Method {
	case http.MethodPost:
		h.addItem(w, r, borrowerID)
	case http.MethodDelete:
		h.removeItem(w, r, borrowerID)
	case http.MethodPatch:
		h.updateReturnDate(w, r, borrowerID)
	default:
		methodNotAllowed(w)
	}
}

type addItemRequest struct {
	InventoryID int64 `json:"inventory_id"`
	Quantity    int   `json:"quantity"`
}

func (h *HTTPHandler) addItem(w http.ResponseWriter, r *http.Request, borrowerID int64) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	item, err := h.inventory.Get(r.Context(), req.InventoryID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	cart, err := h.carts.GetOrCreateDraft(r.Context(), borrowerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	lines, err := h.carts.AddItem(r.Context(), cart, item, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{
		Cart:  cartToJSON(cart),
		Items: linesToJSON(lines),
	})
}

type removeItemRequest struct {
	InventoryID int64 `json:"inventory_id"`
}

func (h *HTTPHandler) removeItem(w http.ResponseWriter, r *http.Request, borrowerID int64) {
	var req removeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	cart, err := h.carts.GetOrCreateDraft(r.Context(), borrowerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.carts.RemoveItem(r.Context(), cart, req.InventoryID); err != nil {
		h.writeError(w, err)
		return
	}

	lines, err := h.carts.ListItems(r.Context(), cart)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{
		Cart:  cartToJSON(cart),
		Items: linesToJSON(lines),
	})
}

type updateReturnDateRequest struct {
	CartItemID int64  `json:"cart_item_id"`
	ReturnDate string `json:"return_date"`
}

func (h *HTTPHandler) updateReturnDate(w http.ResponseWriter, r *http.Request, borrowerID int64) {
	var req updateReturnDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	date, err := time.Parse(dateLayout, req.ReturnDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "return_date must be YYYY-MM-DD"})
		return
	}

	cart, err := h.carts.GetOrCreateDraft(r.Context(), borrowerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.carts.UpdateReturnDate(r.Context(), cart, req.CartItemID, date); err != nil {
		h.writeError(w, err)
		return
	}

	lines, err := h.carts.ListItems(r.Context(), cart)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{
		Cart:  cartToJSON(cart),
		Items: linesToJSON(lines),
	})
}

func (h *HTTPHandler) submitCart(w http.ResponseWriter, r *http.Request, borrowerID int64) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	cart, err := h.carts.GetOrCreateDraft(r.Context(), borrowerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	submitted, shortfalls, err := h.carts.Submit(r.Context(), cart)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := submitResponse{Cart: cartToJSON(submitted)}
	for _, sf := range shortfalls {
		out.Shortfalls = append(out.Shortfalls, shortfallJSON{
			InventoryID: sf.InventoryID,
			Name:        sf.Name,
			Requested:   sf.Requested,
			Remaining:   sf.Remaining,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) listRequests(w http.ResponseWriter, r *http.Request, borrowerID int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	views, err := h.history.Requests(r.Context(), borrowerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]requestJSON, 0, len(views))
	for _, v := range views {
		out = append(out, requestJSON{
			Cart:  cartToJSON(v.Cart),
			Items: linesToJSON(v.Items),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) listTransactions(w http.ResponseWriter, r *http.Request, borrowerID int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	views, err := h.history.Transactions(r.Context(), borrowerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]transactionJSON, 0, len(views))
	for _, v := range views {
		out = append(out, transactionToJSON(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var (
		ve *domain.ValidationError
		se *domain.InvalidStateError
		ce *domain.ConflictError
		ne *domain.NotFoundError
		ue *domain.UpstreamError
	)
	switch {
	case errors.As(err, &ve):
		status, message = http.StatusBadRequest, ve.Reason
	case errors.As(err, &ne):
		status, message = http.StatusNotFound, ne.Error()
	case errors.As(err, &ce):
		status, message = http.StatusConflict, "conflicting update, refresh and retry"
	case errors.As(err, &se):
		status, message = http.StatusUnprocessableEntity, se.Error()
	case errors.As(err, &ue):
		status, message = http.StatusBadGateway, "storage unavailable, retry shortly"
		h.log.Error("upstream failure", "error", err)
	case errors.Is(err, identity.ErrInvalidToken):
		status, message = http.StatusUnauthorized, "invalid token"
	default:
		h.log.Error("unhandled error", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
