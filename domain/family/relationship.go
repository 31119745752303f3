package family

import (
	"strings"

	"github.com/kindredhq/kindred/pkg/apperror"
)

// Relationship is a member's declared relationship to the family root. The
// set is closed; free-form values are rejected at the boundary.
type Relationship string

const (
	RelationRoot     Relationship = "root"
	RelationFather   Relationship = "father"
	RelationMother   Relationship = "mother"
	RelationSon      Relationship = "son"
	RelationDaughter Relationship = "daughter"
	RelationBrother  Relationship = "brother"
	RelationSister   Relationship = "sister"
	RelationHusband  Relationship = "husband"
	RelationWife     Relationship = "wife"

	RelationGrandfather   Relationship = "grandfather"
	RelationGrandmother   Relationship = "grandmother"
	RelationGrandson      Relationship = "grandson"
	RelationGranddaughter Relationship = "granddaughter"
	RelationUncle         Relationship = "uncle"
	RelationAunt          Relationship = "aunt"
	RelationCousin        Relationship = "cousin"
	RelationNephew        Relationship = "nephew"
	RelationNiece         Relationship = "niece"
)

// topLevelRelations connect directly to the root with no intermediate parent
// record between them.
var topLevelRelations = map[Relationship]bool{
	RelationRoot:     true,
	RelationFather:   true,
	RelationMother:   true,
	RelationSon:      true,
	RelationDaughter: true,
	RelationBrother:  true,
	RelationSister:   true,
	RelationHusband:  true,
	RelationWife:     true,
}

var allRelations = map[Relationship]bool{
	RelationRoot: true, RelationFather: true, RelationMother: true,
	RelationSon: true, RelationDaughter: true, RelationBrother: true,
	RelationSister: true, RelationHusband: true, RelationWife: true,
	RelationGrandfather: true, RelationGrandmother: true,
	RelationGrandson: true, RelationGranddaughter: true,
	RelationUncle: true, RelationAunt: true, RelationCousin: true,
	RelationNephew: true, RelationNiece: true,
}

// ParseRelationship normalizes and validates a relationship value.
func ParseRelationship(value string) (Relationship, error) {
	rel := Relationship(strings.ToLower(strings.TrimSpace(value)))
	if !allRelations[rel] {
		return "", apperror.ErrValidation.WithMessage("unknown relationship to root: " + value)
	}
	return rel, nil
}

// IsTopLevel reports whether the relationship connects directly to the root.
// Non-top-level relationships require a parent record linking the member into
// the lineage.
func (r Relationship) IsTopLevel() bool {
	return topLevelRelations[r]
}

func (r Relationship) String() string {
	return string(r)
}

// Family type axis. A person belongs to at most one family per axis.
const (
	FamilyTypeMaternal = "MATERNAL"
	FamilyTypePaternal = "PATERNAL"
)

// ParseFamilyType normalizes MATERNAL/PATERNAL, case-insensitively.
func ParseFamilyType(value string) (string, error) {
	ft := strings.ToUpper(strings.TrimSpace(value))
	if ft != FamilyTypeMaternal && ft != FamilyTypePaternal {
		return "", apperror.ErrValidation.WithMessage("familyType must be MATERNAL or PATERNAL")
	}
	return ft, nil
}
