package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestI18NPrefersExplicitLocaleHeader(t *testing.T) {
	var gotLocale string
	handler := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/funds", nil)
	req.Header.Set("X-Locale", "id-ID")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotLocale != "id" {
		t.Fatalf("locale mismatch: got %q want %q", gotLocale, "id")
	}
}

func TestI18NFallsBackToAcceptLanguage(t *testing.T) {
	var gotLocale string
	handler := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/funds", nil)
	req.Header.Set("Accept-Language", "id,en;q=0.8")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotLocale != "id" {
		t.Fatalf("locale mismatch: got %q want %q", gotLocale, "id")
	}
}

func TestI18NResolvesCountryFromLookup(t *testing.T) {
	var gotCountry string
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.7" {
			return "", errors.New("unexpected ip")
		}
		return "id", nil
	}
	handler := I18N("en", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCountry = CountryFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/funds", nil)
	req.RemoteAddr = "203.0.113.7:4545"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotCountry != "ID" {
		t.Fatalf("country mismatch: got %q want %q", gotCountry, "ID")
	}
}

func TestI18NCountryHeaderBeatsLookup(t *testing.T) {
	var gotCountry string
	handler := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCountry = CountryFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/funds", nil)
	req.Header.Set("CF-IPCountry", "sg")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotCountry != "SG" {
		t.Fatalf("country mismatch: got %q want %q", gotCountry, "SG")
	}
}
