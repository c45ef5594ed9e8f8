// Package speech — lines.go centralises every spoken string. The domain
// terms (município, bairro, logradouro) stay in Portuguese; keep lines
// short, the TTS engine handles inflection.
package speech

import "fmt"

// ── Address change announcements ─────────────────────────────────

// LineMunicipioChange announces entering a new município.
func LineMunicipioChange(previous, current string) string {
	switch {
	case current == "":
		return fmt.Sprintf("Você saiu de %s.", previous)
	case previous == "":
		return fmt.Sprintf("Você está em %s.", current)
	default:
		return fmt.Sprintf("Você chegou em %s.", current)
	}
}

// LineBairroChange announces entering a new bairro.
func LineBairroChange(previous, current string) string {
	switch {
	case current == "":
		return fmt.Sprintf("Você saiu do bairro %s.", previous)
	case previous == "":
		return fmt.Sprintf("Você está no bairro %s.", current)
	default:
		return fmt.Sprintf("Você entrou no bairro %s.", current)
	}
}

// LineLogradouroChange announces a street change.
func LineLogradouroChange(previous, current string) string {
	switch {
	case current == "":
		return fmt.Sprintf("Você saiu de %s.", previous)
	default:
		return fmt.Sprintf("Você está em %s.", current)
	}
}

// ── Service lines ────────────────────────────────────────────────

func LineStarted() string {
	return "Localização por voz ativada."
}

func LineStopped() string {
	return "Localização por voz encerrada."
}
