package repository_test

import (
    "context"
    "database/sql"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/parking-lot-reservation/internal/database"
    "github.com/iliyamo/parking-lot-reservation/internal/model"
    "github.com/iliyamo/parking-lot-reservation/internal/repository"
    "github.com/iliyamo/parking-lot-reservation/internal/utils"
)

func newTestDB(t *testing.T) *sql.DB {
    t.Helper()
    db, err := database.OpenSQLite(":memory:")
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })
    return db
}

func TestUserCreateAndGet(t *testing.T) {
    db := newTestDB(t)
    users := repository.NewUserRepo(db)
    ctx := context.Background()

    id, err := users.Create(ctx, "alice", "alice@example.com", "s3cret", model.RoleUser, 4)
    require.NoError(t, err)
    assert.NotZero(t, id)

    u, err := users.GetByUsername(ctx, "alice")
    require.NoError(t, err)
    assert.Equal(t, id, u.ID)
    assert.Equal(t, "alice@example.com", u.Email)
    assert.Equal(t, model.RoleUser, u.Role)
    assert.True(t, utils.VerifyPassword(u.PasswordHash, "s3cret"))

    byID, err := users.GetByID(ctx, id)
    require.NoError(t, err)
    assert.Equal(t, "alice", byID.Username)
}

func TestUserCreateDuplicate(t *testing.T) {
    db := newTestDB(t)
    users := repository.NewUserRepo(db)
    ctx := context.Background()

    _, err := users.Create(ctx, "alice", "alice@example.com", "pw", model.RoleUser, 4)
    require.NoError(t, err)

    _, err = users.Create(ctx, "alice", "other@example.com", "pw", model.RoleUser, 4)
    assert.ErrorIs(t, err, repository.ErrUsernameExists)

    _, err = users.Create(ctx, "alice2", "alice@example.com", "pw", model.RoleUser, 4)
    assert.ErrorIs(t, err, repository.ErrUsernameExists)
}

func TestUserNotFound(t *testing.T) {
    db := newTestDB(t)
    users := repository.NewUserRepo(db)
    ctx := context.Background()

    _, err := users.GetByUsername(ctx, "ghost")
    assert.ErrorIs(t, err, repository.ErrUserNotFound)

    _, err = users.GetByID(ctx, 404)
    assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserListAndCountByRole(t *testing.T) {
    db := newTestDB(t)
    users := repository.NewUserRepo(db)
    ctx := context.Background()

    _, err := users.Create(ctx, "root", "root@example.com", "pw", model.RoleAdmin, 4)
    require.NoError(t, err)
    for _, name := range []string{"alice", "bob"} {
        _, err := users.Create(ctx, name, name+"@example.com", "pw", model.RoleUser, 4)
        require.NoError(t, err)
    }

    plain, err := users.ListByRole(ctx, model.RoleUser)
    require.NoError(t, err)
    require.Len(t, plain, 2)
    assert.Equal(t, "alice", plain[0].Username)
    assert.Equal(t, "bob", plain[1].Username)

    n, err := users.CountByRole(ctx, model.RoleAdmin)
    require.NoError(t, err)
    assert.Equal(t, 1, n)
}

func TestRefreshTokenLifecycle(t *testing.T) {
    db := newTestDB(t)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    ctx := context.Background()

    uid, err := users.Create(ctx, "alice", "alice@example.com", "pw", model.RoleUser, 4)
    require.NoError(t, err)

    hash := utils.HashRefreshRaw("raw-token")
    require.NoError(t, tokens.StoreRefresh(ctx, uid, hash, time.Now().UTC().Add(time.Hour)))

    got, err := tokens.ValidateRefresh(ctx, hash)
    require.NoError(t, err)
    assert.Equal(t, uid, got)

    require.NoError(t, tokens.RevokeByHash(ctx, hash))
    _, err = tokens.ValidateRefresh(ctx, hash)
    assert.Error(t, err)
}

func TestRefreshTokenExpired(t *testing.T) {
    db := newTestDB(t)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    ctx := context.Background()

    uid, err := users.Create(ctx, "alice", "alice@example.com", "pw", model.RoleUser, 4)
    require.NoError(t, err)

    hash := utils.HashRefreshRaw("stale")
    require.NoError(t, tokens.StoreRefresh(ctx, uid, hash, time.Now().UTC().Add(-time.Minute)))

    _, err = tokens.ValidateRefresh(ctx, hash)
    assert.Error(t, err)

    // RevokeAllForUser leaves nothing usable either.
    fresh := utils.HashRefreshRaw("fresh")
    require.NoError(t, tokens.StoreRefresh(ctx, uid, fresh, time.Now().UTC().Add(time.Hour)))
    require.NoError(t, tokens.RevokeAllForUser(ctx, uid))
    _, err = tokens.ValidateRefresh(ctx, fresh)
    assert.Error(t, err)
}
