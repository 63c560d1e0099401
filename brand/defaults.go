package brand

// DefaultRegistry returns the compiled-in brand table used when no
// external table is configured. brand-a is the designated default.
func DefaultRegistry() *Registry {
	registry, err := NewRegistry("brand-a",
		Record{
			ID:                   "brand-a",
			Name:                 "Brand A",
			PrimaryColor:         "#1d4ed8",
			SecondaryColor:       "#dbeafe",
			AccentColor:          "#f59e0b",
			DefaultLocale:        "en",
			SupportedLocales:     []string{"en", "de", "fr"},
			TranslationNamespace: "a",
		},
		Record{
			ID:                   "brand-b",
			Name:                 "Brand B",
			PrimaryColor:         "#15803d",
			SecondaryColor:       "#dcfce7",
			AccentColor:          "#db2777",
			DefaultLocale:        "en",
			SupportedLocales:     []string{"en", "de", "it"},
			TranslationNamespace: "b",
		},
		Record{
			ID:                   "brand-c",
			Name:                 "Brand C",
			PrimaryColor:         "#7c3aed",
			SecondaryColor:       "#ede9fe",
			AccentColor:          "#0d9488",
			DefaultLocale:        "de",
			SupportedLocales:     []string{"de", "en"},
			TranslationNamespace: "c",
		},
	)
	if err != nil {
		// The compiled-in table is validated by tests; reaching here is a bug.
		panic(err)
	}
	return registry
}
