package family

import (
	"github.com/kindredhq/kindred/domain/users"
)

// CreateFamilyRequest carries both root modes. Root set means an existing
// person anchors the family; otherwise NewRootFullName/NewRootUserName
// describe a placeholder root to create. The NewParent* trio is required
// when RelationshipToRoot is not top-level.
type CreateFamilyRequest struct {
	Creator string `json:"creator"`

	FamilyName       string `json:"familyName"`
	Country          string `json:"country"`
	State            string `json:"state"`
	Tribe            string `json:"tribe"`
	FamilyCoverImage string `json:"familyCoverImage,omitempty"`
	FamilyType       string `json:"familyType,omitempty"`

	RelationshipToRoot string `json:"relationshipToRoot"`

	Root            string `json:"root,omitempty"`
	NewRootFullName string `json:"newRootFullName,omitempty"`
	NewRootUserName string `json:"newRootUserName,omitempty"`

	NewParentRelationship string `json:"newParentRelationship,omitempty"`
	NewParentFullName     string `json:"newParentFullName,omitempty"`
	NewParentGender       string `json:"newParentGender,omitempty"`
}

// hasNewParent reports whether the caller supplied the complete placeholder
// parent attribute set.
func (r CreateFamilyRequest) hasNewParent() bool {
	return r.NewParentRelationship != "" && r.NewParentFullName != "" && r.NewParentGender != ""
}

// JoinFamilyRequest attaches an existing person to an existing family.
type JoinFamilyRequest struct {
	FamilyID           string `json:"familyId"`
	User               string `json:"user"`
	RelationshipToRoot string `json:"relationshipToRoot"`
	FamilyType         string `json:"familyType,omitempty"`
	Parent             string `json:"parent,omitempty"`
}

// JoinFamilyResult is returned on a successful join.
type JoinFamilyResult struct {
	FamilyID   string `json:"familyId"`
	FamilyName string `json:"familyName"`
	MemberID   string `json:"memberId"`
}

// TypeCheckResult reports whether a family type is still free for a user,
// and which family holds it when not.
type TypeCheckResult struct {
	Unique         bool   `json:"unique"`
	ConflictFamily string `json:"conflictFamily,omitempty"`
}

// SearchFamilyRequest is a free-text search across name, username, country
// and state.
type SearchFamilyRequest struct {
	SearchText string `query:"searchText" json:"searchText"`
}

// FamilyOverview is the list-read shape: the family row with the root
// reduced to its public profile. The projection shadows the embedded Root
// relation, so list reads never expose the root's contact fields.
type FamilyOverview struct {
	*Family
	Root users.PublicProfile `json:"root"`
}

// QueryFamiliesRequest is a conjunctive, case-insensitive filter.
type QueryFamiliesRequest struct {
	FamilyName string `query:"familyName" json:"familyName"`
	Country    string `query:"country" json:"country"`
	State      string `query:"state" json:"state"`
	Tribe      string `query:"tribe" json:"tribe"`
}

// UpdateFamilyRequest is a partial update; nil fields are left untouched.
type UpdateFamilyRequest struct {
	FamilyName       *string `json:"familyName,omitempty"`
	Country          *string `json:"country,omitempty"`
	State            *string `json:"state,omitempty"`
	Tribe            *string `json:"tribe,omitempty"`
	FamilyCoverImage *string `json:"familyCoverImage,omitempty"`
	WikiID           *string `json:"wikiId,omitempty"`
}

// CoverUploadRequest asks for a presigned upload slot for a family cover.
type CoverUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}
