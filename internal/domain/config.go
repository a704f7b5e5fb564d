package domain

type Config struct {
	FQDN         string `yaml:"fqdn"`
	Localization Localization
}

// Localization is the instance-wide locale configuration. When Locales
// is empty, localization is disabled and documents carry plain values.
type Localization struct {
	Locales        []string `yaml:"locales"`
	DefaultLocale  string   `yaml:"defaultLocale"`
	FallbackLocale string   `yaml:"fallbackLocale"`
}

// Enabled reports whether any locale is configured.
func (l Localization) Enabled() bool {
	return len(l.Locales) > 0
}

// Fallback resolves the fallback locale, defaulting to the default
// locale when none is set explicitly.
func (l Localization) Fallback() string {
	if l.FallbackLocale != "" {
		return l.FallbackLocale
	}
	return l.DefaultLocale
}
