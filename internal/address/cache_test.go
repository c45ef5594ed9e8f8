package address

import (
	"testing"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
)

func newTestCache(t *testing.T) (*ChangeCache, map[domain.Field]*[]domain.FieldChange) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	c := NewChangeCache(log)

	seen := make(map[domain.Field]*[]domain.FieldChange)
	for _, f := range domain.TrackedFields {
		changes := &[]domain.FieldChange{}
		seen[f] = changes
		if err := c.OnField(f, func(ch domain.FieldChange) {
			*changes = append(*changes, ch)
		}); err != nil {
			t.Fatalf("registering callback for %s: %v", f, err)
		}
	}
	return c, seen
}

func TestSetAddressFiresPerChangedField(t *testing.T) {
	c, seen := newTestCache(t)

	c.SetAddress(domain.Address{
		Logradouro: "Rua do Carmo",
		Bairro:     "Centro",
		Municipio:  "Serro",
		UF:         "MG",
	})

	for _, f := range domain.TrackedFields {
		if got := len(*seen[f]); got != 1 {
			t.Fatalf("expected 1 change for %s on first address, got %d", f, got)
		}
	}

	// First address transitions come from the empty value.
	ch := (*seen[domain.FieldMunicipio])[0]
	if ch.Previous != "" || ch.Current != "Serro" {
		t.Fatalf("unexpected município transition: %+v", ch)
	}
}

func TestSetAddressIdempotentDuplicate(t *testing.T) {
	c, seen := newTestCache(t)

	addr := domain.Address{Logradouro: "Rua Direita", Bairro: "Centro", Municipio: "Serro", UF: "MG"}
	c.SetAddress(addr)

	for _, f := range domain.TrackedFields {
		*seen[f] = nil
	}

	c.SetAddress(addr)

	for _, f := range domain.TrackedFields {
		if got := len(*seen[f]); got != 0 {
			t.Fatalf("identical address re-set fired %d callbacks for %s", got, f)
		}
	}
}

func TestSetAddressScenarioMunicipioChange(t *testing.T) {
	c, seen := newTestCache(t)

	c.SetAddress(domain.Address{Municipio: "São Paulo", Bairro: "Centro"})
	for _, f := range domain.TrackedFields {
		*seen[f] = nil
	}

	c.SetAddress(domain.Address{Municipio: "Rio de Janeiro", Bairro: "Centro"})

	got := *seen[domain.FieldMunicipio]
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 município change, got %d", len(got))
	}
	if got[0].Previous != "São Paulo" || got[0].Current != "Rio de Janeiro" {
		t.Fatalf("unexpected payload: %+v", got[0])
	}
	if len(*seen[domain.FieldBairro]) != 0 {
		t.Fatal("bairro callback fired for an unchanged field")
	}
	if len(*seen[domain.FieldLogradouro]) != 0 {
		t.Fatal("logradouro callback fired for an unchanged field")
	}
}

func TestSetAddressFieldOrderDeterminism(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	c := NewChangeCache(log)

	var order []domain.Field
	for _, f := range domain.TrackedFields {
		if err := c.OnField(f, func(ch domain.FieldChange) {
			order = append(order, ch.Field)
		}); err != nil {
			t.Fatalf("registering callback: %v", err)
		}
	}

	c.SetAddress(domain.Address{Logradouro: "Rua A", Bairro: "Bairro B", Municipio: "Cidade C"})

	want := []domain.Field{domain.FieldLogradouro, domain.FieldBairro, domain.FieldMunicipio}
	if len(order) != len(want) {
		t.Fatalf("expected %d callbacks, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("callback order %v, want %v", order, want)
		}
	}
}

func TestSetAddressEmptyTransitionsAreReal(t *testing.T) {
	c, seen := newTestCache(t)

	c.SetAddress(domain.Address{Bairro: "Centro", Municipio: "Serro"})
	*seen[domain.FieldBairro] = nil

	// Leaving the mapped bairro for open countryside.
	c.SetAddress(domain.Address{Bairro: "", Municipio: "Serro"})

	got := *seen[domain.FieldBairro]
	if len(got) != 1 {
		t.Fatalf("expected bairro change to empty, got %d callbacks", len(got))
	}
	if got[0].Previous != "Centro" || got[0].Current != "" {
		t.Fatalf("unexpected payload: %+v", got[0])
	}

	// Staying in the countryside must stay quiet.
	*seen[domain.FieldBairro] = nil
	c.SetAddress(domain.Address{Bairro: "", Municipio: "Serro"})
	if len(*seen[domain.FieldBairro]) != 0 {
		t.Fatal("empty→empty must not fire")
	}
}

func TestSetAddressShiftsPreviousPair(t *testing.T) {
	c, _ := newTestCache(t)

	first := domain.Address{Municipio: "Serro"}
	second := domain.Address{Municipio: "Diamantina"}

	c.SetAddress(first)
	c.SetAddress(second)

	cur, ok := c.Current()
	if !ok || cur.Municipio != "Diamantina" {
		t.Fatalf("unexpected current: %+v (ok=%v)", cur, ok)
	}
	prev, ok := c.Previous()
	if !ok || prev.Municipio != "Serro" {
		t.Fatalf("unexpected previous: %+v (ok=%v)", prev, ok)
	}
}

func TestSetAddressRevisitedTransitionFiresAgain(t *testing.T) {
	// Walking back and forth between two bairros: each crossing is a new
	// transition, only exact repeats of the last reported one are
	// suppressed.
	c, seen := newTestCache(t)

	c.SetAddress(domain.Address{Bairro: "Centro"})
	c.SetAddress(domain.Address{Bairro: "Milho Verde"})
	c.SetAddress(domain.Address{Bairro: "Centro"})
	c.SetAddress(domain.Address{Bairro: "Milho Verde"})

	if got := len(*seen[domain.FieldBairro]); got != 4 {
		t.Fatalf("expected 4 bairro changes, got %d", got)
	}
}

func TestClearResetsStateAndSignatures(t *testing.T) {
	c, seen := newTestCache(t)

	c.SetAddress(domain.Address{Bairro: "Centro", Municipio: "Serro"})
	c.Clear()

	if _, ok := c.Current(); ok {
		t.Fatal("current must be empty after clear")
	}
	if _, ok := c.Previous(); ok {
		t.Fatal("previous must be empty after clear")
	}

	for _, f := range domain.TrackedFields {
		*seen[f] = nil
	}

	// After a clear the same first address must announce again.
	c.SetAddress(domain.Address{Bairro: "Centro", Municipio: "Serro"})
	if len(*seen[domain.FieldMunicipio]) != 1 {
		t.Fatal("clear must reset the stored signatures")
	}
}

func TestOnFieldValidation(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	c := NewChangeCache(log)

	if err := c.OnField(domain.Field("pais"), func(domain.FieldChange) {}); err != domain.ErrUnknownField {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := c.OnField(domain.FieldBairro, nil); err != domain.ErrNilObserver {
		t.Fatalf("expected ErrNilObserver, got %v", err)
	}
}

func TestMultipleListenersPerField(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	c := NewChangeCache(log)

	var a, b int
	if err := c.OnField(domain.FieldMunicipio, func(domain.FieldChange) { a++ }); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if err := c.OnField(domain.FieldMunicipio, func(domain.FieldChange) { b++ }); err != nil {
		t.Fatalf("register b: %v", err)
	}

	c.SetAddress(domain.Address{Municipio: "Serro"})

	if a != 1 || b != 1 {
		t.Fatalf("both listeners must fire once: a=%d b=%d", a, b)
	}
}
