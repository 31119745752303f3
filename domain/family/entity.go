package family

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/kindredhq/kindred/domain/users"
)

// Family is a single-rooted lineage tree. Members reference it through
// FamilyMember rows; membersCount is kept equal to the number of attached
// member rows.
type Family struct {
	bun.BaseModel `bun:"table:families,alias:f"`

	ID        string `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	CreatorID string `bun:"creator_id,notnull,type:uuid" json:"creatorId"`
	RootID    string `bun:"root_id,notnull,type:uuid" json:"rootId"`

	FamilyName string `bun:"family_name,notnull" json:"familyName"`
	Country    string `bun:"country,notnull" json:"country"`
	State      string `bun:"state,notnull" json:"state"`
	Tribe      string `bun:"tribe,notnull" json:"tribe"`

	FamilyUsername   string `bun:"family_username,notnull" json:"familyUsername"`
	FamilyCoverImage string `bun:"family_cover_image,notnull" json:"familyCoverImage"`
	FamilyJoinLink   string `bun:"family_join_link,notnull" json:"familyJoinLink"`

	// BranchIDs lists attached sub-families in attach order.
	BranchIDs    []string `bun:"branches,array" json:"branches"`
	MembersCount int      `bun:"members_count,notnull,default:0" json:"membersCount"`
	WikiID       *string  `bun:"wiki_id,type:uuid" json:"wikiId,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:now()" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:now()" json:"updatedAt"`

	Root    *users.PrimaryUser `bun:"rel:belongs-to,join:root_id=id" json:"root,omitempty"`
	Members []*FamilyMember    `bun:"rel:has-many,join:id=family_id" json:"members,omitempty"`

	// Branches holds the expanded BranchIDs sub-families on detail reads.
	Branches []*Family `bun:"-" json:"branchFamilies,omitempty"`
}

// rosterDisplayCap bounds the members returned per family on list reads.
const rosterDisplayCap = 6

// FamilyMember binds a person to a family under a family type and a declared
// relationship to the root. FamilyID is nullable because member rows are
// written before the family row exists; they are tagged with the generated
// family username and patched with the id in the same transaction.
type FamilyMember struct {
	bun.BaseModel `bun:"table:family_members,alias:fm"`

	ID       string  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	UserID   string  `bun:"user_id,notnull,type:uuid" json:"userId"`
	FamilyID *string `bun:"family_id,type:uuid" json:"familyId,omitempty"`

	FamilyUsername     string  `bun:"family_username,notnull" json:"familyUsername"`
	FamilyType         *string `bun:"family_type" json:"familyType,omitempty"`
	RelationshipToRoot string  `bun:"relationship_to_root,notnull" json:"relationshipToRoot"`

	// ParentID points at the placeholder person linking a non-top-level
	// member into the lineage.
	ParentID *string `bun:"parent_id,type:uuid" json:"parentId,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:now()" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:now()" json:"updatedAt"`

	User   *users.PrimaryUser `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Family *Family            `bun:"rel:belongs-to,join:family_id=id" json:"-"`
}
