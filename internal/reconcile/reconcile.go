// Package reconcile turns the base/pack unit pair found in imported
// ingredient rows into a pair the cost engine can convert.
package reconcile

import (
	"github.com/PoFerry/atelierculinairepof/internal/parse"
	"github.com/PoFerry/atelierculinairepof/internal/units"
)

// Units resolves raw base and pack unit text. It never fails: a missing or
// unknown base falls back to the pack's family and then to units.Piece, and
// an unresolved pack unit falls back to the base.
//
// The pack unit keeps its specific spelling (kg stays kg); only the base is
// collapsed to its family's base unit. When base and pack disagree on
// mass vs volume the pack wins, since it describes what was actually bought.
func Units(rawBase, rawPack string) (base, pack units.Unit) {
	base = resolve(rawBase)
	pack = resolve(rawPack)

	if base != "" {
		base = units.Base(base.Family())
	}

	if base == "" {
		if pack != "" {
			base = units.Base(pack.Family())
		} else {
			base = units.Piece
		}
	}

	if pack == "" {
		pack = base
	}

	bf, pf := base.Family(), pack.Family()

	// "caisse", "sac"... against a g/ml base: pack_size is already in base units.
	if pf == units.FamilyCount && measured(bf) {
		pack = base
		pf = bf
	}

	if bf == units.FamilyCount && measured(pf) {
		base = units.Base(pf)
		bf = pf
	}

	if measured(bf) && measured(pf) && bf != pf {
		base = units.Base(pf)
	}

	return base, pack
}

func resolve(raw string) units.Unit {
	u, err := units.Canonical(parse.UnitText(raw))
	if err != nil {
		return ""
	}
	return u
}

func measured(f units.Family) bool {
	return f == units.FamilyMass || f == units.FamilyVolume
}
