package units

import (
	"errors"
	"fmt"
	"strings"
)

type Family string

const (
	FamilyMass   Family = "mass"
	FamilyVolume Family = "volume"
	FamilyCount  Family = "count"
)

type Unit string

const (
	Milligram  Unit = "mg"
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Pound      Unit = "lb"
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Piece      Unit = "unit"
)

var (
	ErrUnknownUnit          = errors.New("unknown unit")
	ErrConversionImpossible = errors.New("conversion impossible")
)

type def struct {
	family Family
	factor float64 // multiply by factor to get the family base unit
}

var table = map[Unit]def{
	Milligram:  {FamilyMass, 0.001},
	Gram:       {FamilyMass, 1},
	Kilogram:   {FamilyMass, 1000},
	Pound:      {FamilyMass, 453.59237},
	Milliliter: {FamilyVolume, 1},
	Liter:      {FamilyVolume, 1000},
	Piece:      {FamilyCount, 1},
}

var bases = map[Family]Unit{
	FamilyMass:   Gram,
	FamilyVolume: Milliliter,
	FamilyCount:  Piece,
}

// synonyms are keyed by lowercase, accent-free spellings.
var synonyms = map[string]Unit{
	"unite": Piece, "unites": Piece, "u": Piece, "un": Piece, "units": Piece,
	"piece": Piece, "pieces": Piece, "pc": Piece, "pcs": Piece, "pz": Piece,
	"portion": Piece, "portions": Piece, "paquet": Piece, "paquets": Piece,
	"caisse": Piece, "caisses": Piece, "boite": Piece, "boites": Piece, "bte": Piece,
	"sac": Piece, "sacs": Piece, "sachet": Piece, "sachets": Piece,

	"litre": Liter, "litres": Liter, "liter": Liter, "liters": Liter, "lt": Liter,
	"millilitre": Milliliter, "millilitres": Milliliter, "milliliter": Milliliter, "milliliters": Milliliter,

	"gramme": Gram, "grammes": Gram, "gram": Gram, "grams": Gram, "gr": Gram,
	"kilogramme": Kilogram, "kilogrammes": Kilogram, "kilogram": Kilogram, "kilograms": Kilogram,
	"kilo": Kilogram, "kilos": Kilogram, "kgs": Kilogram,
	"milligramme": Milligram, "milligrammes": Milligram, "milligram": Milligram, "milligrams": Milligram,
	"lbs": Pound, "livre": Pound, "livres": Pound,
}

// Fold maps a cleaned token to its canonical spelling when it is a known
// synonym and returns it unchanged otherwise.
func Fold(token string) string {
	if u, ok := synonyms[token]; ok {
		return string(u)
	}
	return token
}

// Canonical resolves a token (already lowercased and accent-free, or a plain
// unit symbol) to a Unit.
func Canonical(token string) (Unit, error) {
	t := Fold(strings.ToLower(strings.TrimSpace(token)))
	if _, ok := table[Unit(t)]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, token)
	}
	return Unit(t), nil
}

// Family returns the unit's family or "" for units outside the table.
func (u Unit) Family() Family {
	return table[u].family
}

func (u Unit) Valid() bool {
	_, ok := table[u]
	return ok
}

func (u Unit) String() string { return string(u) }

func Base(f Family) Unit {
	return bases[f]
}

// BaseOf returns the base unit of u's family.
func BaseOf(u Unit) (Unit, error) {
	d, ok := table[u]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, string(u))
	}
	return bases[d.family], nil
}

func FactorToBase(u Unit) (float64, error) {
	d, ok := table[u]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(u))
	}
	return d.factor, nil
}

// Convert expresses qty of unit from in unit to. Both units must belong to
// the same family.
func Convert(qty float64, from, to Unit) (float64, error) {
	f, ok := table[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(from))
	}
	t, ok := table[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(to))
	}
	if f.family != t.family {
		return 0, fmt.Errorf("%w: %s (%s) -> %s (%s)", ErrConversionImpossible, from, f.family, to, t.family)
	}
	if from == to {
		return qty, nil
	}
	return qty * f.factor / t.factor, nil
}

// Humanize picks a display unit: 1000 g and more are shown in kg, 1000 ml
// and more in l. Other quantities stay in the given unit.
func Humanize(qty float64, base Unit) (float64, Unit) {
	abs := qty
	if abs < 0 {
		abs = -abs
	}
	switch base {
	case Gram:
		if abs >= 1000 {
			return qty / 1000, Kilogram
		}
	case Milliliter:
		if abs >= 1000 {
			return qty / 1000, Liter
		}
	}
	return qty, base
}

// All lists the known units, base units first.
func All() []Unit {
	return []Unit{Gram, Milliliter, Piece, Milligram, Kilogram, Pound, Liter}
}
