package password

// Policy define los requisitos mínimos de un password nuevo.
// El registro y el reset comparten la misma policy (min 12 por defecto).
type Policy struct {
	MinLength int
}

// Validate retorna false si el password no cumple la policy.
func (p Policy) Validate(s string) bool {
	min := p.MinLength
	if min <= 0 {
		min = 12
	}
	return len([]rune(s)) >= min
}
