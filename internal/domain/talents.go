package domain

// TalentEra discriminates the two talent payload shapes. It is always set
// from the caller-supplied era flag, never inferred from the data.
type TalentEra string

const (
	// TalentEraClassic is the tree format used from classic through Cataclysm.
	TalentEraClassic TalentEra = "classic"
	// TalentEraModern is the flat per-specialization talent list.
	TalentEraModern TalentEra = "modern"
)

// Talents is a tagged union: exactly one of Classic or Modern is populated,
// keyed by Era.
type Talents struct {
	Era     TalentEra     `json:"era"`
	Classic []ClassicSpec `json:"classic,omitempty"`
	Modern  []ModernSpec  `json:"modern,omitempty"`
}

type ClassicTalent struct {
	SpellID  int `json:"spell_id"`
	TalentID int `json:"talent_id"`
	Rank     int `json:"rank"`
}

type TalentTree struct {
	Name        string          `json:"name"`
	PointsSpent int             `json:"points_spent"`
	Talents     []ClassicTalent `json:"talents"`
}

type ClassicSpec struct {
	IsActive bool         `json:"is_active"`
	Glyphs   []string     `json:"glyphs,omitempty"`
	Trees    []TalentTree `json:"trees"`
}

type ModernTalent struct {
	SpellID  int `json:"spell_id"`
	TalentID int `json:"talent_id"`
}

type ModernSpec struct {
	Name     string         `json:"name,omitempty"`
	IsActive bool           `json:"is_active"`
	Glyphs   []string       `json:"glyphs,omitempty"`
	Talents  []ModernTalent `json:"talents"`
}

// SpecName resolves a specialization name for the ranking query. With active
// true it names the active spec; with active false the secondary one. For the
// tree format the name is the tree with the most invested points; for the
// flat format it is the entry's own name. Empty string means no spec could be
// determined.
func (t Talents) SpecName(active bool) string {
	switch t.Era {
	case TalentEraModern:
		for _, spec := range t.Modern {
			if spec.IsActive == active {
				return spec.Name
			}
		}
		return ""
	default:
		for _, spec := range t.Classic {
			if spec.IsActive != active {
				continue
			}
			max := 0
			name := ""
			for _, tree := range spec.Trees {
				if tree.PointsSpent > max {
					max = tree.PointsSpent
					name = tree.Name
				}
			}
			return name
		}
		return ""
	}
}
