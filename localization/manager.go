package localization

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pitabwire/util"
	"golang.org/x/text/language"

	"github.com/pitabwire/whitelabel/brand"
)

// Manager exposes message catalog translation to page rendering.
type Manager interface {
	Bundle() *i18n.Bundle
	Translate(ctx context.Context, locale, messageID string) string
	TranslateWithMap(ctx context.Context, locale, messageID string, variables map[string]any) string
}

type managerImpl struct {
	bundle *i18n.Bundle
	b      brand.Record
}

// NewManager loads the message catalogs for the supplied languages and
// binds translation to the active brand's namespace. Message files are
// expected at <translationsFolder>/messages.<lang>.toml.
func NewManager(b brand.Record, translationsFolder string, languages ...string) Manager {
	if translationsFolder == "" {
		translationsFolder = "localization"
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, lang := range languages {
		bundle.MustLoadMessageFile(fmt.Sprintf("%s/messages.%v.toml", translationsFolder, lang))
	}

	return &managerImpl{bundle: bundle, b: b}
}

// NewManagerWithBundle binds an already loaded bundle to a brand.
// Useful in tests where catalogs are constructed in memory.
func NewManagerWithBundle(b brand.Record, bundle *i18n.Bundle) Manager {
	return &managerImpl{bundle: bundle, b: b}
}

// Bundle accesses the translation bundle instantiated in the system.
func (s *managerImpl) Bundle() *i18n.Bundle {
	return s.bundle
}

// Translate performs a quick translation based on the supplied message id.
func (s *managerImpl) Translate(ctx context.Context, locale, messageID string) string {
	return s.TranslateWithMap(ctx, locale, messageID, map[string]any{})
}

// TranslateWithMap performs a translation with variables based on the
// supplied message id. The brand's translation namespace is tried first
// so brands can override shared messages; the bare id is the fallback.
func (s *managerImpl) TranslateWithMap(
	ctx context.Context,
	locale, messageID string,
	variables map[string]any,
) string {
	localizer := i18n.NewLocalizer(s.bundle, Resolve(locale, s.b), s.b.DefaultLocale)

	namespacedID := s.b.TranslationNamespace + "." + messageID
	translated, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    namespacedID,
		TemplateData: variables,
	})
	if err == nil {
		return translated
	}

	translated, err = localizer.Localize(&i18n.LocalizeConfig{
		MessageID:      messageID,
		DefaultMessage: &i18n.Message{ID: messageID},
		TemplateData:   variables,
	})
	if err != nil {
		logger := util.Log(ctx).WithError(err).WithField("messageID", messageID)
		logger.Error("could not perform translation")
	}

	return translated
}
