package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
)

func TestReverseStandardizesAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("format"); got != "jsonv2" {
			t.Errorf("expected jsonv2 format, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"address": {
				"road": "Rua do Carmo",
				"suburb": "Milho Verde",
				"town": "Serro",
				"state": "Minas Gerais",
				"ISO3166-2-lvl4": "BR-MG",
				"region": "Região Geográfica Intermediária de Teófilo Otoni"
			}
		}`))
	}))
	defer srv.Close()

	log := logger.New(logger.LevelOff, nil)
	c := NewClient(log, WithBaseURL(srv.URL))

	addr, err := c.Reverse(context.Background(), -18.4696091, -43.4953982)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}

	if addr.Logradouro != "Rua do Carmo" {
		t.Fatalf("logradouro = %q", addr.Logradouro)
	}
	if addr.Bairro != "Milho Verde" {
		t.Fatalf("bairro = %q", addr.Bairro)
	}
	if addr.Municipio != "Serro" {
		t.Fatalf("município = %q", addr.Municipio)
	}
	if addr.UF != "MG" {
		t.Fatalf("uf = %q", addr.UF)
	}
}

func TestReverseMunicipioFallbackKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"city", `{"address":{"city":"Belo Horizonte"}}`, "Belo Horizonte"},
		{"town", `{"address":{"town":"Serro"}}`, "Serro"},
		{"village", `{"address":{"village":"Milho Verde"}}`, "Milho Verde"},
		{"municipality", `{"address":{"municipality":"Conceição do Mato Dentro"}}`, "Conceição do Mato Dentro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			log := logger.New(logger.LevelOff, nil)
			c := NewClient(log, WithBaseURL(srv.URL))

			addr, err := c.Reverse(context.Background(), -18.46, -43.49)
			if err != nil {
				t.Fatalf("reverse: %v", err)
			}
			if addr.Municipio != tt.want {
				t.Fatalf("município = %q, want %q", addr.Municipio, tt.want)
			}
		})
	}
}

func TestReverseProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	log := logger.New(logger.LevelOff, nil)
	c := NewClient(log, WithBaseURL(srv.URL))

	if _, err := c.Reverse(context.Background(), 0, 0); !errors.Is(err, domain.ErrNoAddress) {
		t.Fatalf("expected ErrNoAddress, got %v", err)
	}
}

func TestReverseHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	log := logger.New(logger.LevelOff, nil)
	c := NewClient(log, WithBaseURL(srv.URL))

	if _, err := c.Reverse(context.Background(), -18.46, -43.49); err == nil {
		t.Fatal("expected error on HTTP 429")
	}
}
