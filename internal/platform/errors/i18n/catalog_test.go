package i18n

import "testing"

func TestGetCatalogMatching(t *testing.T) {
	tests := map[string]string{
		"":                         "en-US",
		"en-GB":                    "en-US",
		"pt":                       "pt-BR",
		"pt-BR,pt;q=0.9,en;q=0.5":  "pt-BR",
		"de-DE":                    "en-US",
		"!!not a language tag!!":   "en-US",
		"en-US;q=0.4, pt-BR;q=0.9": "pt-BR",
	}
	for input, want := range tests {
		if got := GetCatalog(input).Locale(); got != want {
			t.Fatalf("GetCatalog(%q) = %q, want %q", input, got, want)
		}
		if got := ResolveLocale(input); got != want {
			t.Fatalf("ResolveLocale(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestEveryLocaleCoversEveryCode(t *testing.T) {
	codes := []Code{
		CodeNotFound, CodeUnauthorized, CodeInvalidArgument, CodeUnauthenticated,
		CodeCallerGrantInvalid, CodeCallerGrantExpired, CodeJournalTampered,
	}
	for _, c := range supported {
		for _, code := range codes {
			if _, ok := c.templates[code]; !ok {
				t.Fatalf("%s: missing or unparsable template for %s", c.locale, code)
			}
		}
	}
}

func TestFormat(t *testing.T) {
	meta := map[string]string{"TokenID": "42"}
	if got := GetCatalog("en-US").Format(CodeNotFound, meta); got != "Token 42 does not exist" {
		t.Fatalf("en-US = %q", got)
	}
	if got := GetCatalog("pt-BR").Format(CodeNotFound, meta); got != "O token 42 não existe" {
		t.Fatalf("pt-BR = %q", got)
	}
	if got := GetCatalog("").Format(CodeUnauthorized, map[string]string{"Operation": "mint"}); got != "Caller is not allowed to mint" {
		t.Fatalf("unauthorized = %q", got)
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := newCatalog("test", map[Code]string{
		"greet":  "hello {{.Name}}",
		"broken": "{{ if .Name }}",
	})
	if got := cat.Format("unknown", nil); got != "unknown" {
		t.Fatalf("unknown code = %q", got)
	}
	if got := cat.Format("greet", nil); got != "hello <no value>" {
		t.Fatalf("missing metadata = %q", got)
	}
	if got := cat.Format("broken", map[string]string{"Name": "x"}); got != "{{ if .Name }}" {
		t.Fatalf("unparsable template = %q", got)
	}
}
