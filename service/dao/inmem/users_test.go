package inmem

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barscript/barscript/service/dao"
)

func Test_UsersRepository_CreateAssignsIDAndTimestamps(t *testing.T) {
	r := NewUsersRepository()
	u, err := r.Create(context.Background(), dao.User{Username: "alice", Password: "hash"})
	require.NoError(t, err)

	assert.NotEqual(t, u.ID, (dao.User{}).ID)
	assert.False(t, u.Created.IsZero())
	assert.False(t, u.Modified.IsZero())
}

func Test_UsersRepository_CreateRejectsDuplicateUsernameCaseInsensitive(t *testing.T) {
	r := NewUsersRepository()
	ctx := context.Background()
	_, err := r.Create(ctx, dao.User{Username: "alice"})
	require.NoError(t, err)

	_, err = r.Create(ctx, dao.User{Username: "ALICE"})
	assert.ErrorIs(t, err, dao.ErrConstraintViolation)
}

func Test_UsersRepository_GetByUsernameIsCaseInsensitive(t *testing.T) {
	r := NewUsersRepository()
	ctx := context.Background()
	created, err := r.Create(ctx, dao.User{Username: "Bob"})
	require.NoError(t, err)

	got, err := r.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func Test_UsersRepository_GetByIDNotFound(t *testing.T) {
	r := NewUsersRepository()
	_, err := r.GetByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, dao.ErrNotFound))
}

func Test_UsersRepository_UpdateRenamesIndex(t *testing.T) {
	r := NewUsersRepository()
	ctx := context.Background()
	created, err := r.Create(ctx, dao.User{Username: "carol"})
	require.NoError(t, err)

	created.Username = "caroline"
	updated, err := r.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "caroline", updated.Username)

	_, err = r.GetByUsername(ctx, "carol")
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	got, err := r.GetByUsername(ctx, "caroline")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func Test_UsersRepository_UpdateRejectsRenameToExistingUsername(t *testing.T) {
	r := NewUsersRepository()
	ctx := context.Background()
	_, err := r.Create(ctx, dao.User{Username: "dave"})
	require.NoError(t, err)
	erin, err := r.Create(ctx, dao.User{Username: "erin"})
	require.NoError(t, err)

	erin.Username = "dave"
	_, err = r.Update(ctx, erin.ID, erin)
	assert.ErrorIs(t, err, dao.ErrConstraintViolation)
}

func Test_UsersRepository_DeleteRemovesFromBothIndexes(t *testing.T) {
	r := NewUsersRepository()
	ctx := context.Background()
	created, err := r.Create(ctx, dao.User{Username: "frank"})
	require.NoError(t, err)

	_, err = r.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
	_, err = r.GetByUsername(ctx, "frank")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
