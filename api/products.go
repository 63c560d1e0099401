package api

import (
	"net/http"
	"strconv"
	"strings"
)

const productsKind = "products"

type productRequest struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

func (p productRequest) valid() bool {
	return strings.TrimSpace(p.Name) != "" && p.PriceCents >= 0
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required and price must not be negative"})
		return
	}

	product, err := h.products.Create(r.Context(), req.Name, req.PriceCents)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.notifier.NotifyMutation(r.Context(), productsKind, product.ID)
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required and price must not be negative"})
		return
	}

	product, err := h.products.Update(r.Context(), r.PathValue("id"), req.Name, req.PriceCents)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.notifier.NotifyMutation(r.Context(), productsKind, product.ID)
	writeJSON(w, http.StatusOK, product)
}

// createProductForm is the form-action flavor of product creation: it
// accepts a urlencoded form post, performs the same mutation and
// invalidation as the REST endpoint, then redirects back to the listing.
func (h *Handler) createProductForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	priceCents, err := strconv.ParseInt(r.FormValue("price_cents"), 10, 64)
	if name == "" || err != nil || priceCents < 0 {
		http.Error(w, "name is required and price must not be negative", http.StatusBadRequest)
		return
	}

	product, err := h.products.Create(r.Context(), name, priceCents)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.notifier.NotifyMutation(r.Context(), productsKind, product.ID)
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	h.notifier.NotifyMutation(r.Context(), productsKind, id)
	writeJSON(w, http.StatusNoContent, nil)
}
