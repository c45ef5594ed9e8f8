package domain

// Address is a standardized Brazilian address as produced by the reverse
// geocoder. Immutable once built; the change cache only ever swaps whole
// values.
type Address struct {
	Logradouro  string `json:"logradouro"`
	Bairro      string `json:"bairro"`
	Municipio   string `json:"municipio"`
	UF          string `json:"uf"`
	RegiaoMetro string `json:"regiao_metropolitana,omitempty"`
}

// Field names the address fields tracked for change detection.
type Field string

const (
	FieldLogradouro Field = "logradouro"
	FieldBairro     Field = "bairro"
	FieldMunicipio  Field = "municipio"
)

// TrackedFields lists the tracked fields in evaluation order. The order is
// part of the contract: when one address swap changes several fields at
// once, callbacks fire logradouro, then bairro, then município.
var TrackedFields = []Field{FieldLogradouro, FieldBairro, FieldMunicipio}

// Get returns the value of a tracked field. Unknown fields read as empty.
func (a Address) Get(f Field) string {
	switch f {
	case FieldLogradouro:
		return a.Logradouro
	case FieldBairro:
		return a.Bairro
	case FieldMunicipio:
		return a.Municipio
	default:
		return ""
	}
}

// FieldChange describes one detected transition of a tracked field.
// Previous or Current may be empty: moving into or out of coverage for a
// field is a real change.
type FieldChange struct {
	Field    Field  `json:"field"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
}
