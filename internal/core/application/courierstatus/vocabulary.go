// Package courierstatus translates between internal stage codes and the
// status vocabulary of the external courier platform.
package courierstatus

import (
	"fmt"
	"strings"

	"ordertracker/internal/pkg/errs"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Mapping pairs one internal stage code with one external status code.
type Mapping struct {
	Internal string
	External string
}

// DefaultMappings is used unless the catalog file provides its own table.
var DefaultMappings = []Mapping{
	{Internal: "pending", External: "created"},
	{Internal: "confirmed", External: "accepted"},
	{Internal: "pickup_scheduled", External: "scheduled"},
	{Internal: "picked_up", External: "picked_up"},
	{Internal: "in_transit", External: "in_transit"},
	{Internal: "out_for_delivery", External: "out_for_delivery"},
	{Internal: "delivered", External: "delivered"},
	{Internal: "cancelled", External: "cancelled"},
	{Internal: "returned", External: "returned_to_sender"},
}

// Normalize trims, applies NFKC and lower-cases an external code, so that
// " DELIVERED", "Delivered" and the full-width "ＤＥＬＩＶＥＲＥＤ" compare equal.
func Normalize(code string) string {
	// a Caser keeps state, so it is not shared between goroutines
	return cases.Lower(language.Und).String(norm.NFKC.String(strings.TrimSpace(code)))
}

// Vocabulary implements ports.CourierVocabulary with two finite maps.
type Vocabulary struct {
	toExternal map[string]string
	toInternal map[string]string
}

// NewVocabulary builds both directions. When several internal codes share an
// external code the first mapping wins on the way back.
func NewVocabulary(mappings []Mapping) (*Vocabulary, error) {
	v := &Vocabulary{
		toExternal: make(map[string]string, len(mappings)),
		toInternal: make(map[string]string, len(mappings)),
	}

	for i, m := range mappings {
		internal := strings.TrimSpace(m.Internal)
		external := Normalize(m.External)
		if internal == "" || external == "" {
			return nil, errs.NewValueIsRequiredErrorWithCause("courier status mapping",
				fmt.Errorf("entry %d has an empty side", i))
		}
		if _, dup := v.toExternal[internal]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("courier status mapping",
				fmt.Errorf("internal code %q mapped twice", internal))
		}

		v.toExternal[internal] = external
		if _, taken := v.toInternal[external]; !taken {
			v.toInternal[external] = internal
		}
	}

	return v, nil
}

// Default returns the vocabulary of DefaultMappings.
func Default() *Vocabulary {
	v, err := NewVocabulary(DefaultMappings)
	if err != nil {
		panic(err)
	}
	return v
}

// ToExternal maps an internal code; unmapped codes pass through unchanged.
func (v *Vocabulary) ToExternal(internalCode string) string {
	if external, ok := v.toExternal[internalCode]; ok {
		return external
	}
	return internalCode
}

// ToInternal maps an external code after normalizing it.
func (v *Vocabulary) ToInternal(externalCode string) (string, bool) {
	internal, ok := v.toInternal[Normalize(externalCode)]
	return internal, ok
}
