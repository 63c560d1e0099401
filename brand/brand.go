// Package brand holds the whitelabel brand table and its resolver.
//
// Brands are constructed once from static configuration at process start
// and are immutable afterwards. Resolution never fails: an unrecognized
// or missing identifier degrades to the configured default brand because
// the page renderer has no recovery path for a missing brand.
package brand

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyTable           = errors.New("brand table is empty")
	ErrUnknownDefaultBrand  = errors.New("default brand id is not in the table")
	ErrDuplicateBrand       = errors.New("duplicate brand id")
	ErrNoSupportedLocales   = errors.New("brand has no supported locales")
	ErrDefaultLocaleMissing = errors.New("brand default locale is not in its supported locales")
)

// Record is one whitelabel variant of the application: colors, locales
// and the translation namespace its message catalogs live under.
// The namespace is an explicit field set at configuration time, never
// derived by parsing the brand id.
type Record struct {
	ID                   string   `json:"id"                    yaml:"id"`
	Name                 string   `json:"name"                  yaml:"name"`
	PrimaryColor         string   `json:"primary_color"         yaml:"primary_color"`
	SecondaryColor       string   `json:"secondary_color"       yaml:"secondary_color"`
	AccentColor          string   `json:"accent_color"          yaml:"accent_color"`
	DefaultLocale        string   `json:"default_locale"        yaml:"default_locale"`
	SupportedLocales     []string `json:"supported_locales"     yaml:"supported_locales"`
	TranslationNamespace string   `json:"translation_namespace" yaml:"translation_namespace"`
}

// Supports reports whether the locale is in the record's supported set.
func (r Record) Supports(locale string) bool {
	return slices.Contains(r.SupportedLocales, locale)
}

// Registry is an immutable brand lookup table with a designated default.
type Registry struct {
	defaultID string
	records   map[string]Record
}

// NewRegistry builds a registry from the supplied records, validating
// every record once. defaultID designates the fallback brand and must be
// present among the records.
func NewRegistry(defaultID string, records ...Record) (*Registry, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	table := make(map[string]Record, len(records))
	for _, rec := range records {
		if err := validate(rec); err != nil {
			return nil, err
		}
		if _, exists := table[rec.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBrand, rec.ID)
		}
		table[rec.ID] = rec
	}

	if _, ok := table[defaultID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDefaultBrand, defaultID)
	}

	return &Registry{defaultID: defaultID, records: table}, nil
}

type registryFile struct {
	DefaultBrand string   `yaml:"default_brand"`
	Brands       []Record `yaml:"brands"`
}

// LoadRegistry builds a registry from YAML configuration data.
func LoadRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("could not parse brand table: %w", err)
	}

	return NewRegistry(file.DefaultBrand, file.Brands...)
}

func validate(rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("brand record without an id: %+v", rec)
	}
	if len(rec.SupportedLocales) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSupportedLocales, rec.ID)
	}
	if !rec.Supports(rec.DefaultLocale) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleMissing, rec.ID)
	}
	return nil
}

// Resolve maps a possibly absent or unrecognized brand identifier to a
// valid record. Unresolvable input returns the default record; no error
// is ever raised.
func (g *Registry) Resolve(rawID string) Record {
	if rawID == "" {
		return g.records[g.defaultID]
	}
	rec, ok := g.records[rawID]
	if !ok {
		return g.records[g.defaultID]
	}
	return rec
}

// Default returns the designated fallback record.
func (g *Registry) Default() Record {
	return g.records[g.defaultID]
}

// IDs lists the configured brand identifiers in no particular order.
func (g *Registry) IDs() []string {
	ids := make([]string, 0, len(g.records))
	for id := range g.records {
		ids = append(ids, id)
	}
	return ids
}
