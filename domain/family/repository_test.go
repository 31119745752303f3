package family

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindredhq/kindred/pkg/apperror"
)

func TestOrderBranchesPreservesAttachOrder(t *testing.T) {
	a := &Family{ID: "a", FamilyName: "Okafor"}
	b := &Family{ID: "b", FamilyName: "Nwosu"}
	c := &Family{ID: "c", FamilyName: "Eze"}

	// Rows come back from the IN query in arbitrary order.
	got := orderBranches([]string{"c", "a", "b"}, []*Family{a, b, c})
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "b", got[2].ID)

	// Ids with no matching row are skipped, order of the rest holds.
	got = orderBranches([]string{"b", "missing", "a"}, []*Family{a, b})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)

	assert.Empty(t, orderBranches(nil, nil))
}

func TestMapMemberWriteError(t *testing.T) {
	typeConflict := errors.New(`ERROR: duplicate key value violates unique constraint "family_members_user_family_type_key" (SQLSTATE 23505)`)
	err := mapMemberWriteError(typeConflict)
	require.NotNil(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.(*apperror.Error).Message, "family of this type")

	pairConflict := errors.New(`ERROR: duplicate key value violates unique constraint "family_members_user_family_username_key" (SQLSTATE 23505)`)
	err = mapMemberWriteError(pairConflict)
	require.NotNil(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.(*apperror.Error).Message, "already a member")

	fkViolation := errors.New(`ERROR: insert or update on table "family_members" violates foreign key constraint "family_members_parent_id_fkey" (SQLSTATE 23503)`)
	err = mapMemberWriteError(fkViolation)
	require.NotNil(t, err)
	assert.Equal(t, "bad_request", err.(*apperror.Error).Code)

	// Anything else is not a constraint violation and stays with the caller.
	assert.Nil(t, mapMemberWriteError(errors.New("connection reset by peer")))
}
