package family

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelationship(t *testing.T) {
	tests := []struct {
		input    string
		want     Relationship
		topLevel bool
		wantErr  bool
	}{
		{input: "son", want: RelationSon, topLevel: true},
		{input: " Daughter ", want: RelationDaughter, topLevel: true},
		{input: "WIFE", want: RelationWife, topLevel: true},
		{input: "root", want: RelationRoot, topLevel: true},
		{input: "grandson", want: RelationGrandson, topLevel: false},
		{input: "cousin", want: RelationCousin, topLevel: false},
		{input: "great-grandchild", wantErr: true},
		{input: "", wantErr: true},
		{input: "stranger", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rel, err := ParseRelationship(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel)
			assert.Equal(t, tt.topLevel, rel.IsTopLevel())
		})
	}
}

func TestParseFamilyType(t *testing.T) {
	for _, input := range []string{"MATERNAL", "maternal", " Maternal "} {
		ft, err := ParseFamilyType(input)
		require.NoError(t, err)
		assert.Equal(t, FamilyTypeMaternal, ft)
	}

	ft, err := ParseFamilyType("paternal")
	require.NoError(t, err)
	assert.Equal(t, FamilyTypePaternal, ft)

	_, err = ParseFamilyType("fraternal")
	require.Error(t, err)
}
