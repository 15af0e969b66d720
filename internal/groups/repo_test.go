package groups

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tripledger/tripledger-backend/pkg/db/models"
)

func setupGroupsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	groups := `
CREATE TABLE IF NOT EXISTS groups (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'EUR',
  created_by_user_id TEXT NOT NULL,
  archived_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	members := `
CREATE TABLE IF NOT EXISTS members (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL,
  user_id TEXT,
  display_name TEXT NOT NULL,
  is_admin INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(groups).Error)
	require.NoError(t, db.Exec(members).Error)
	return db
}

func newTestGroup(t *testing.T, db *gorm.DB, name string) (*models.Group, *models.Member) {
	t.Helper()

	repo := NewRepository(db)
	userID := uuid.New()
	group := &models.Group{
		ID:              uuid.New(),
		Name:            name,
		Currency:        "EUR",
		CreatedByUserID: userID,
	}
	founder := &models.Member{
		ID:          uuid.New(),
		UserID:      &userID,
		DisplayName: "Founder",
		IsAdmin:     true,
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.CreateWithTx(tx, group, founder)
	}))
	return group, founder
}

func TestRepositoryCreateWithTxPersistsFounder(t *testing.T) {
	db := setupGroupsTestDB(t)
	repo := NewRepository(db)

	group, founder := newTestGroup(t, db, "Lisbon 2026")

	assert.Equal(t, group.ID, founder.GroupID)

	loaded, err := repo.FindByID(context.Background(), group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon 2026", loaded.Name)
	assert.False(t, loaded.IsArchived())

	roster, err := repo.ListMembers(context.Background(), group.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.True(t, roster[0].IsAdmin)
}

func TestRepositoryListByUser(t *testing.T) {
	db := setupGroupsTestDB(t)
	repo := NewRepository(db)

	group, founder := newTestGroup(t, db, "Ski Trip")
	newTestGroup(t, db, "Someone Else's Trip")

	got, err := repo.ListByUser(context.Background(), *founder.UserID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, group.ID, got[0].ID)
}

func TestRepositoryArchiveOnlyOnce(t *testing.T) {
	db := setupGroupsTestDB(t)
	repo := NewRepository(db)

	group, _ := newTestGroup(t, db, "Road Trip")

	first := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Archive(context.Background(), group.ID, first))

	loaded, err := repo.FindByID(context.Background(), group.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.ArchivedAt)

	// A second archive must not move the original timestamp.
	require.NoError(t, repo.Archive(context.Background(), group.ID, first.Add(time.Hour)))
	reloaded, err := repo.FindByID(context.Background(), group.ID)
	require.NoError(t, err)
	assert.Equal(t, loaded.ArchivedAt.UTC(), reloaded.ArchivedAt.UTC())
}

func TestRepositoryMemberLifecycle(t *testing.T) {
	db := setupGroupsTestDB(t)
	repo := NewRepository(db)

	group, _ := newTestGroup(t, db, "Hiking Weekend")

	userID := uuid.New()
	member := &models.Member{
		ID:          uuid.New(),
		GroupID:     group.ID,
		UserID:      &userID,
		DisplayName: "Grace",
	}
	require.NoError(t, repo.CreateMember(context.Background(), member))

	found, err := repo.FindMemberByUser(context.Background(), group.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, found.ID)

	require.NoError(t, repo.DeleteMember(context.Background(), group.ID, member.ID))

	_, err = repo.FindMemberByUser(context.Background(), group.ID, userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
