package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/language"

	"github.com/pitabwire/whitelabel"
	"github.com/pitabwire/whitelabel/api"
	"github.com/pitabwire/whitelabel/brand"
	"github.com/pitabwire/whitelabel/cache"
	"github.com/pitabwire/whitelabel/localization"
	"github.com/pitabwire/whitelabel/render"
	"github.com/pitabwire/whitelabel/revalidation"
	"github.com/pitabwire/whitelabel/store"
)

type APITestSuite struct {
	suite.Suite

	server *httptest.Server
	client *http.Client
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, &APITestSuite{})
}

func (s *APITestSuite) SetupTest() {
	registry := brand.DefaultRegistry()
	activeBrand := registry.Resolve("brand-a")

	bundle := i18n.NewBundle(language.English)
	s.Require().NoError(bundle.AddMessages(language.English,
		&i18n.Message{ID: "nav.home", Other: "Home"},
		&i18n.Message{ID: "nav.products", Other: "Products"},
		&i18n.Message{ID: "nav.users", Other: "Users"},
		&i18n.Message{ID: "nav.about", Other: "About"},
		&i18n.Message{ID: "home.title", Other: "Welcome"},
		&i18n.Message{ID: "home.intro", Other: "Demo shop"},
		&i18n.Message{ID: "products.title", Other: "Products"},
		&i18n.Message{ID: "users.title", Other: "Users"},
		&i18n.Message{ID: "about.title", Other: "About this shop"},
		&i18n.Message{ID: "about.body", Other: "Cached per locale."},
		&i18n.Message{ID: "product.price", Other: "Price (cents)"},
		&i18n.Message{ID: "products.form.name", Other: "Product name"},
		&i18n.Message{ID: "products.form.submit", Other: "Add product"},
		&i18n.Message{ID: "locale.fallback", Other: "Default language shown."},
	))
	s.Require().NoError(bundle.AddMessages(language.German,
		&i18n.Message{ID: "products.title", Other: "Produkte"},
	))

	translator := localization.NewManagerWithBundle(activeBrand, bundle)

	pages := render.NewPageCache(cache.NewInMemoryCache())
	s.T().Cleanup(func() { _ = pages.Close() })

	renderer, err := render.NewRenderer(activeBrand, translator, pages)
	s.Require().NoError(err)

	notifier, err := revalidation.NewNotifier(pages, 4)
	s.Require().NoError(err)
	s.T().Cleanup(notifier.Close)

	handler := api.NewHandler(
		store.NewProductStore(0),
		store.NewUserStore(0),
		notifier,
		renderer,
		time.Minute,
	)

	registryMux := whitelabel.NewRouteRegistry()
	handler.SetupRoutes(registryMux)

	s.server = httptest.NewServer(registryMux)
	s.T().Cleanup(s.server.Close)
	s.client = s.server.Client()
}

func (s *APITestSuite) doJSON(method, path string, body any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func decode[T any](s *APITestSuite, resp *http.Response) T {
	defer func() { _ = resp.Body.Close() }()
	var v T
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *APITestSuite) TestProductCRUDOverHTTP() {
	resp := s.doJSON(http.MethodGet, "/api/products", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	seeded := decode[[]store.Product](s, resp)
	s.NotEmpty(seeded)

	resp = s.doJSON(http.MethodPost, "/api/products", map[string]any{
		"name": "Drip Tray", "price_cents": 1500,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	created := decode[store.Product](s, resp)
	s.NotEmpty(created.ID)

	resp = s.doJSON(http.MethodGet, "/api/products/"+created.ID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Drip Tray", decode[store.Product](s, resp).Name)

	resp = s.doJSON(http.MethodPut, "/api/products/"+created.ID, map[string]any{
		"name": "Drip Tray XL", "price_cents": 1800,
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Drip Tray XL", decode[store.Product](s, resp).Name)

	resp = s.doJSON(http.MethodDelete, "/api/products/"+created.ID, nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.doJSON(http.MethodGet, "/api/products/"+created.ID, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *APITestSuite) TestValidationErrors() {
	testCases := []struct {
		name string
		path string
		body any
	}{
		{name: "product without name", path: "/api/products", body: map[string]any{"price_cents": 100}},
		{name: "product with negative price", path: "/api/products", body: map[string]any{"name": "x", "price_cents": -1}},
		{name: "user without email", path: "/api/users", body: map[string]any{"name": "x", "email": "nope"}},
	}

	for _, tc := range testCases {
		s.T().Run(tc.name, func(t *testing.T) {
			resp := s.doJSON(http.MethodPost, tc.path, tc.body)
			defer func() { _ = resp.Body.Close() }()
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func (s *APITestSuite) getPage(path, acceptLanguage string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *APITestSuite) TestMutationInvalidatesRenderedPages() {
	// Warm the static product listing and the home page.
	first := s.getPage("/products", "")
	s.Equal(http.StatusOK, first.StatusCode)
	s.Equal("MISS", first.Header.Get("X-Cache"))

	second := s.getPage("/products", "")
	s.Equal("HIT", second.Header.Get("X-Cache"))

	home := s.getPage("/", "")
	s.Equal("MISS", home.Header.Get("X-Cache"))

	// Creating a product invalidates /, /products and the new detail path.
	resp := s.doJSON(http.MethodPost, "/api/products", map[string]any{
		"name": "Aero Filter", "price_cents": 700,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	listAgain := s.getPage("/products", "")
	s.Equal("MISS", listAgain.Header.Get("X-Cache"))

	homeAgain := s.getPage("/", "")
	s.Equal("MISS", homeAgain.Header.Get("X-Cache"))
}

func (s *APITestSuite) TestLocaleVariantsAreCachedSeparately() {
	english := s.getPage("/products", "en")
	s.Equal("MISS", english.Header.Get("X-Cache"))
	s.Equal("en", english.Header.Get("Content-Language"))

	german := s.getPage("/products", "de")
	s.Equal("MISS", german.Header.Get("X-Cache"))
	s.Equal("de", german.Header.Get("Content-Language"))

	germanAgain := s.getPage("/products", "de")
	s.Equal("HIT", germanAgain.Header.Get("X-Cache"))
}

func (s *APITestSuite) TestUnsupportedLocaleFallsBack() {
	// brand-a supports en, de and fr; Swahili falls back to en.
	resp := s.getPage("/about", "sw")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("en", resp.Header.Get("Content-Language"))
}

func (s *APITestSuite) TestDetailPageMissingEntityIs404() {
	resp := s.getPage("/products/no-such-id", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.getPage("/users/no-such-id", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APITestSuite) TestProductDetailPageServesAndInvalidates() {
	resp := s.doJSON(http.MethodPost, "/api/products", map[string]any{
		"name": "Tamper", "price_cents": 2500,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	created := decode[store.Product](s, resp)

	detailPath := fmt.Sprintf("/products/%s", created.ID)

	detail := s.getPage(detailPath, "")
	s.Equal(http.StatusOK, detail.StatusCode)
	s.Equal("MISS", detail.Header.Get("X-Cache"))

	cached := s.getPage(detailPath, "")
	s.Equal("HIT", cached.Header.Get("X-Cache"))

	resp = s.doJSON(http.MethodPut, "/api/products/"+created.ID, map[string]any{
		"name": "Calibrated Tamper", "price_cents": 2900,
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	fresh := s.getPage(detailPath, "")
	s.Equal("MISS", fresh.Header.Get("X-Cache"))
}

func (s *APITestSuite) TestFormActionCreatesAndInvalidates() {
	warm := s.getPage("/products", "")
	s.Equal("MISS", warm.Header.Get("X-Cache"))
	s.Equal("HIT", s.getPage("/products", "").Header.Get("X-Cache"))

	form := url.Values{"name": {"Cupping Spoon"}, "price_cents": {"800"}}
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/products", strings.NewReader(form.Encode()))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Equal(http.StatusSeeOther, resp.StatusCode)
	s.Equal("/products", resp.Header.Get("Location"))

	fresh := s.getPage("/products", "")
	s.Equal("MISS", fresh.Header.Get("X-Cache"))
}

func (s *APITestSuite) TestRouteRegistryIntrospection() {
	reg := whitelabel.NewRouteRegistry()
	reg.HandleRoute(http.MethodGet, "/ping", "ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	routes := reg.Routes()
	s.Require().Len(routes, 1)
	s.Equal(http.MethodGet, routes[0].Method)
	s.Equal("/ping", routes[0].Path)
	s.Equal("ping", routes[0].Handler)
}
