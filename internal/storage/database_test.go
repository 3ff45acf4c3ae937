package storage

import (
	"context"
	"testing"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDatabaseLister_List(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Repository{}, &models.RepositoryObject{}))

	ctx := context.Background()
	require.NoError(t, models.NewAccountService(db).Create(ctx, &models.Account{ID: "nasa", Name: "NASA"}))
	require.NoError(t, models.NewRepositoryService(db).Create(ctx, &models.Repository{ID: "landsat-collection", AccountID: "nasa", Title: "Landsat"}))
	objects := models.NewObjectService(db)
	for _, p := range []string{"README.md", "data/", "data/scene-001.tif"} {
		require.NoError(t, objects.Create(ctx, &models.RepositoryObject{RepositoryID: "landsat-collection", Path: p}))
	}

	lister := NewDatabaseLister(db)
	result, err := lister.List(ctx, "landsat-collection", "data")
	require.NoError(t, err)
	assert.Equal(t, []string{"data/", "data/scene-001.tif"}, paths(result.Objects))

	result, err = lister.List(ctx, "landsat-collection", "")
	require.NoError(t, err)
	assert.Len(t, result.Objects, 3)

	_, err = lister.List(ctx, "", "")
	assert.True(t, IsInvalidArgument(err))
}
