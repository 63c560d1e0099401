package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pitabwire/util"

	"github.com/pitabwire/whitelabel"
	"github.com/pitabwire/whitelabel/localization"
	"github.com/pitabwire/whitelabel/render"
	"github.com/pitabwire/whitelabel/revalidation"
	"github.com/pitabwire/whitelabel/store"
)

// Handler exposes the application's routes over a RouteRegistry.
type Handler struct {
	products store.ProductRepository
	users    store.UserRepository
	notifier *revalidation.Notifier
	renderer *render.Renderer

	// revalidateAfter bounds freshness of the pages rendered with the
	// revalidating policy.
	revalidateAfter time.Duration
}

// NewHandler assembles the HTTP surface from its collaborators.
func NewHandler(
	products store.ProductRepository,
	users store.UserRepository,
	notifier *revalidation.Notifier,
	renderer *render.Renderer,
	revalidateAfter time.Duration,
) *Handler {
	return &Handler{
		products:        products,
		users:           users,
		notifier:        notifier,
		renderer:        renderer,
		revalidateAfter: revalidateAfter,
	}
}

// SetupRoutes registers every page and API route.
func (h *Handler) SetupRoutes(reg *whitelabel.RouteRegistry) {
	// Server-rendered pages, one per rendering strategy.
	reg.HandleRoute(http.MethodGet, "/{$}", "home", h.renderer.Handler(h.homePage()))
	reg.HandleRoute(http.MethodGet, "/about", "about", h.renderer.Handler(h.aboutPage()))
	reg.HandleRoute(http.MethodGet, "/products", "productList", h.renderer.Handler(h.productListPage()))
	reg.HandleRoute(http.MethodPost, "/products", "createProductForm", h.createProductForm)
	reg.HandleRoute(http.MethodGet, "/products/{id}", "productDetail", h.productDetailPage)
	reg.HandleRoute(http.MethodGet, "/users", "userList", h.renderer.Handler(h.userListPage()))
	reg.HandleRoute(http.MethodGet, "/users/{id}", "userDetail", h.userDetailPage)

	// JSON REST endpoints.
	reg.HandleRoute(http.MethodGet, "/api/products", "listProducts", h.listProducts)
	reg.HandleRoute(http.MethodPost, "/api/products", "createProduct", h.createProduct)
	reg.HandleRoute(http.MethodGet, "/api/products/{id}", "getProduct", h.getProduct)
	reg.HandleRoute(http.MethodPut, "/api/products/{id}", "updateProduct", h.updateProduct)
	reg.HandleRoute(http.MethodDelete, "/api/products/{id}", "deleteProduct", h.deleteProduct)

	reg.HandleRoute(http.MethodGet, "/api/users", "listUsers", h.listUsers)
	reg.HandleRoute(http.MethodPost, "/api/users", "createUser", h.createUser)
	reg.HandleRoute(http.MethodGet, "/api/users/{id}", "getUser", h.getUser)
	reg.HandleRoute(http.MethodPut, "/api/users/{id}", "updateUser", h.updateUser)
	reg.HandleRoute(http.MethodDelete, "/api/users/{id}", "deleteUser", h.deleteUser)
}

type homeData struct {
	Products []store.Product
	Users    []store.User
}

func (h *Handler) homePage() render.Page {
	return render.Page{
		Path:            "/",
		Template:        "home.html.tmpl",
		Policy:          render.PolicyRevalidate,
		RevalidateAfter: h.revalidateAfter,
		Data: func(ctx context.Context) (any, error) {
			products, err := h.products.List(ctx)
			if err != nil {
				return nil, err
			}
			users, err := h.users.List(ctx)
			if err != nil {
				return nil, err
			}
			return homeData{Products: products, Users: users}, nil
		},
	}
}

func (h *Handler) aboutPage() render.Page {
	return render.Page{
		Path:     "/about",
		Template: "about.html.tmpl",
		Policy:   render.PolicyStatic,
	}
}

func (h *Handler) productListPage() render.Page {
	return render.Page{
		Path:     "/products",
		Template: "products.html.tmpl",
		Policy:   render.PolicyStatic,
		Data: func(ctx context.Context) (any, error) {
			return h.products.List(ctx)
		},
	}
}

func (h *Handler) userListPage() render.Page {
	return render.Page{
		Path:            "/users",
		Template:        "users.html.tmpl",
		Policy:          render.PolicyRevalidate,
		RevalidateAfter: h.revalidateAfter,
		Data: func(ctx context.Context) (any, error) {
			return h.users.List(ctx)
		},
	}
}

// productDetailPage builds the page per request because the path depends
// on the entity id; its cache entry is invalidated by mutations on that id.
func (h *Handler) productDetailPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	page := render.Page{
		Path:     "/products/" + id,
		Template: "product.html.tmpl",
		Policy:   render.PolicyStatic,
		Data: func(ctx context.Context) (any, error) {
			return h.products.GetByID(ctx, id)
		},
	}

	h.renderDetail(w, r, page)
}

func (h *Handler) userDetailPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	page := render.Page{
		Path:     "/users/" + id,
		Template: "user.html.tmpl",
		Policy:   render.PolicyDynamic,
		Data: func(ctx context.Context) (any, error) {
			return h.users.GetByID(ctx, id)
		},
	}

	h.renderDetail(w, r, page)
}

// renderDetail renders a single-entity page, mapping a missing record to
// a plain 404 instead of the renderer's 500.
func (h *Handler) renderDetail(w http.ResponseWriter, r *http.Request, page render.Page) {
	requested := localization.ResolveRequest(r, h.renderer.Brand())

	err := h.renderer.Render(r.Context(), w, page, requested)
	if err == nil {
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}

	util.Log(r.Context()).WithError(err).WithField("path", page.Path).Error("page render failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
