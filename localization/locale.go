// Package localization resolves request locales against the active brand
// and loads the translation catalogs used by page rendering.
package localization

import (
	"context"
	"net/http"
	"strings"

	"github.com/pitabwire/whitelabel/brand"
)

type contextKey string

func (c contextKey) String() string {
	return "whitelabel/localization/" + string(c)
}

const ctxKeyLocale = contextKey("localeKey")

// ToContext adds the resolved locale to the current supplied context.
func ToContext(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKeyLocale, locale)
}

// FromContext extracts the resolved locale from the supplied context if any exist.
func FromContext(ctx context.Context) string {
	locale, ok := ctx.Value(ctxKeyLocale).(string)
	if !ok {
		return ""
	}
	return locale
}

// Resolve maps a possibly absent or unsupported requested locale to one
// the brand supports. Resolution always succeeds: an unsupported request
// falls back to the brand's default locale. The registry guarantees at
// construction time that the default locale is supported, so no
// defensive check happens here.
func Resolve(requested string, b brand.Record) string {
	if requested != "" && b.Supports(requested) {
		return requested
	}
	return b.DefaultLocale
}

// Resolution carries the locale fallback outcome for templates and logs.
type Resolution struct {
	Requested    string `json:"requested_locale"`
	Resolved     string `json:"resolved_locale"`
	FallbackUsed bool   `json:"fallback_used"`
}

// ResolveDetailed is Resolve plus metadata about whether fallback applied.
func ResolveDetailed(requested string, b brand.Record) Resolution {
	resolved := Resolve(requested, b)
	return Resolution{
		Requested:    requested,
		Resolved:     resolved,
		FallbackUsed: resolved != requested,
	}
}

// ExtractLanguageFromHTTPRequest collects locale candidates from a
// request: an explicit lang form/query value first, then the
// Accept-Language header entries in order.
func ExtractLanguageFromHTTPRequest(req *http.Request) []string {
	lang := req.FormValue("lang")

	acceptedLang := ExtractLanguageFromHTTPHeader(req.Header)

	var languages []string
	if lang != "" {
		languages = append(languages, lang)
	}

	return append(languages, acceptedLang...)
}

// ExtractLanguageFromHTTPHeader parses the Accept-Language header into
// bare locale codes, dropping quality weights.
func ExtractLanguageFromHTTPHeader(header http.Header) []string {
	acceptLanguageHeader := header.Get("Accept-Language")
	if acceptLanguageHeader == "" {
		return nil
	}

	parts := strings.Split(acceptLanguageHeader, ",")
	languages := make([]string, 0, len(parts))
	for _, part := range parts {
		lang, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if lang != "" {
			languages = append(languages, lang)
		}
	}
	return languages
}

// ResolveRequest resolves the first supported candidate from the request
// against the brand, falling back to the brand default when none match.
func ResolveRequest(req *http.Request, b brand.Record) string {
	for _, candidate := range ExtractLanguageFromHTTPRequest(req) {
		if b.Supports(candidate) {
			return candidate
		}
	}
	return b.DefaultLocale
}

// SwapPathLocale replaces the leading locale segment of a path with the
// supplied locale, treating the path as structured segments rather than
// doing string substitution. A path without a leading locale segment for
// the brand gains one.
func SwapPathLocale(path, locale string, b brand.Record) string {
	trimmed := strings.TrimPrefix(path, "/")
	segments := strings.Split(trimmed, "/")

	if len(segments) > 0 && b.Supports(segments[0]) {
		segments[0] = locale
	} else {
		segments = append([]string{locale}, segments...)
	}

	return "/" + strings.TrimSuffix(strings.Join(segments, "/"), "/")
}
