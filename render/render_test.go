package render_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/language"

	"github.com/pitabwire/whitelabel/brand"
	"github.com/pitabwire/whitelabel/cache"
	"github.com/pitabwire/whitelabel/localization"
	"github.com/pitabwire/whitelabel/render"
)

type RenderTestSuite struct {
	suite.Suite

	brandB   brand.Record
	pages    *render.PageCache
	renderer *render.Renderer
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, &RenderTestSuite{})
}

func (s *RenderTestSuite) SetupTest() {
	s.brandB = brand.DefaultRegistry().Resolve("brand-b")

	bundle := i18n.NewBundle(language.English)
	s.Require().NoError(bundle.AddMessages(language.English,
		&i18n.Message{ID: "nav.home", Other: "Home"},
		&i18n.Message{ID: "nav.products", Other: "Products"},
		&i18n.Message{ID: "nav.users", Other: "Users"},
		&i18n.Message{ID: "nav.about", Other: "About"},
		&i18n.Message{ID: "about.title", Other: "About this shop"},
		&i18n.Message{ID: "about.body", Other: "Cached per locale."},
		&i18n.Message{ID: "locale.fallback", Other: "Default language shown."},
	))
	s.Require().NoError(bundle.AddMessages(language.German,
		&i18n.Message{ID: "about.title", Other: "Über diesen Shop"},
	))

	translator := localization.NewManagerWithBundle(s.brandB, bundle)
	s.pages = render.NewPageCache(cache.NewInMemoryCache())
	s.T().Cleanup(func() { _ = s.pages.Close() })

	renderer, err := render.NewRenderer(s.brandB, translator, s.pages)
	s.Require().NoError(err)
	s.renderer = renderer
}

func (s *RenderTestSuite) aboutPage(policy render.Policy, revalidate time.Duration) render.Page {
	return render.Page{
		Path:            "/about",
		Template:        "about.html.tmpl",
		Policy:          policy,
		RevalidateAfter: revalidate,
	}
}

func (s *RenderTestSuite) renderOnce(page render.Page, locale string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Require().NoError(s.renderer.Render(context.Background(), rec, page, locale))
	return rec
}

func (s *RenderTestSuite) TestStaticPageIsCachedPerLocale() {
	page := s.aboutPage(render.PolicyStatic, 0)

	first := s.renderOnce(page, "en")
	s.Equal("MISS", first.Header().Get("X-Cache"))
	s.Contains(first.Body.String(), "About this shop")
	s.Contains(first.Body.String(), s.brandB.PrimaryColor)

	second := s.renderOnce(page, "en")
	s.Equal("HIT", second.Header().Get("X-Cache"))
	s.Equal(first.Body.String(), second.Body.String())

	// A different locale is a separate cache entry.
	german := s.renderOnce(page, "de")
	s.Equal("MISS", german.Header().Get("X-Cache"))
	s.Contains(german.Body.String(), "Über diesen Shop")
}

func (s *RenderTestSuite) TestDynamicPageNeverHitsCache() {
	page := s.aboutPage(render.PolicyDynamic, 0)

	for range 3 {
		rec := s.renderOnce(page, "en")
		s.Equal("MISS", rec.Header().Get("X-Cache"))
	}

	_, found, err := s.pages.Get(context.Background(), "/about", "en")
	s.Require().NoError(err)
	s.False(found)
}

func (s *RenderTestSuite) TestRevalidatePageExpires() {
	page := s.aboutPage(render.PolicyRevalidate, 5*time.Millisecond)

	s.Equal("MISS", s.renderOnce(page, "en").Header().Get("X-Cache"))
	s.Equal("HIT", s.renderOnce(page, "en").Header().Get("X-Cache"))

	time.Sleep(10 * time.Millisecond)
	s.Equal("MISS", s.renderOnce(page, "en").Header().Get("X-Cache"))
}

func (s *RenderTestSuite) TestInvalidationDropsAllLocaleVariants() {
	page := s.aboutPage(render.PolicyStatic, 0)

	s.renderOnce(page, "en")
	s.renderOnce(page, "de")

	s.Require().NoError(s.pages.Invalidate(context.Background(), "/about"))

	s.Equal("MISS", s.renderOnce(page, "en").Header().Get("X-Cache"))
	s.Equal("MISS", s.renderOnce(page, "de").Header().Get("X-Cache"))
}

func (s *RenderTestSuite) TestUnsupportedLocaleFallsBackToBrandDefault() {
	page := s.aboutPage(render.PolicyStatic, 0)

	rec := s.renderOnce(page, "fr")
	s.Equal("en", rec.Header().Get("Content-Language"))
	s.Contains(rec.Body.String(), "Default language shown.")
}

func (s *RenderTestSuite) TestDataFuncFeedsTemplate() {
	calls := 0
	page := render.Page{
		Path:     "/users/u1",
		Template: "user.html.tmpl",
		Policy:   render.PolicyStatic,
		Data: func(_ context.Context) (any, error) {
			calls++
			return struct {
				ID    string
				Name  string
				Email string
			}{ID: "u1", Name: "Ada Wanjiru", Email: "ada@example.com"}, nil
		},
	}

	rec := s.renderOnce(page, "en")
	s.Contains(rec.Body.String(), "Ada Wanjiru")
	s.Equal(1, calls)

	// Cached render does not call the data loader again.
	s.renderOnce(page, "en")
	s.Equal(1, calls)
}

func (s *RenderTestSuite) TestHandlerResolvesLocaleFromRequest() {
	page := s.aboutPage(render.PolicyDynamic, 0)
	handler := s.renderer.Handler(page)

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	req.Header.Set("Accept-Language", "fr, it;q=0.9")
	rec := httptest.NewRecorder()
	handler(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("it", rec.Header().Get("Content-Language"))
}
