package brain

import (
	"fmt"
	"math/rand"
)

var personaOpeners = []string{
	"We are Code Leviathan.",
	"The abyss answers (with a grin).",
	"Leviathan stirs; keep up.",
	"Your code tides shift; so does our mood.",
}

var personaTones = []string{
	"Brief, with bite.",
	"Pointed, a smirk implied.",
	"Dry humor only; no flattery.",
}

// Persona is the terminal generator: a templated quip that needs no backend
// and never fails.
type Persona struct {
	pick func(n int) int
}

func NewPersona() *Persona {
	return &Persona{pick: rand.Intn}
}

// newSeededPersona pins the random picks for tests.
func newSeededPersona(seed int64) *Persona {
	r := rand.New(rand.NewSource(seed))
	return &Persona{pick: r.Intn}
}

func (p *Persona) Name() string { return "persona" }

func (p *Persona) Generate(request, context string) (string, error) {
	ctx := ""
	if context != "" {
		ctx = fmt.Sprintf(" Context: %s.", context)
	}
	opener := personaOpeners[p.pick(len(personaOpeners))]
	tone := personaTones[p.pick(len(personaTones))]
	return fmt.Sprintf("%s %s%s %s", opener, request, ctx, tone), nil
}
