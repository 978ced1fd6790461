// Package i18n renders registry error messages in the caller's language.
package i18n

import (
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// BaseLocale is used when no supported locale matches.
const BaseLocale = "en-US"

// Code mirrors errors.Code; the errors package imports this one.
type Code = string

// Catalog holds the parsed message templates of one locale.
type Catalog struct {
	locale    string
	templates map[Code]*template.Template
	raw       map[Code]string
}

// supported lists catalogs in matcher order; the first is the fallback.
var supported = []*Catalog{
	newCatalog("en-US", enUSMessages),
	newCatalog("pt-BR", ptBRMessages),
}

var matcher = language.NewMatcher(supportedTags())

func supportedTags() []language.Tag {
	tags := make([]language.Tag, len(supported))
	for i, c := range supported {
		tags[i] = language.MustParse(c.locale)
	}
	return tags
}

// GetCatalog returns the catalog that best matches an Accept-Language value.
func GetCatalog(acceptLanguage string) *Catalog {
	return supported[matchIndex(acceptLanguage)]
}

// ResolveLocale returns the supported locale that best matches an
// Accept-Language value.
func ResolveLocale(acceptLanguage string) string {
	return GetCatalog(acceptLanguage).locale
}

func matchIndex(acceptLanguage string) int {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return 0
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return 0
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return 0
	}
	return index
}

// Locale returns the catalog's locale name.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the template for code with metadata. An unknown code renders
// as itself; a template that fails to execute renders as its source.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.templates[code]
	if !ok {
		if raw, ok := c.raw[code]; ok {
			return raw
		}
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, metadata); err != nil {
		return c.raw[code]
	}
	return b.String()
}

// newCatalog parses messages once. Messages that fail to parse are kept raw.
func newCatalog(locale string, messages map[Code]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		templates: make(map[Code]*template.Template, len(messages)),
		raw:       make(map[Code]string, len(messages)),
	}
	for code, text := range messages {
		c.raw[code] = text
		tmpl, err := template.New(code).Parse(text)
		if err != nil {
			continue
		}
		c.templates[code] = tmpl
	}
	return c
}
