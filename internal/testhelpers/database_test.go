package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipefinder/backend/internal/models"
)

func TestDatabaseSetup(t *testing.T) {
	for name, setup := range map[string]func(*testing.T) *gorm.DB{
		"sqlite":   SetupSQLiteDB,
		"postgres": SetupPostgresDB,
	} {
		t.Run(name, func(t *testing.T) {
			db := setup(t)
			require.NotNil(t, db)

			profile := &models.UserProfile{UserID: "user-1", Name: "Test User", Email: "test@example.com"}
			require.NoError(t, db.Create(profile).Error)
			assert.NotZero(t, profile.ID)

			dup := &models.UserProfile{UserID: "user-1"}
			assert.Error(t, db.Create(dup).Error, "user_id is unique")
		})
	}
}

func TestRequireContainerRuntimeWithoutDocker(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	var reached bool
	t.Run("guarded", func(t *testing.T) {
		RequireContainerRuntime(t)
		reached = true
	})
	assert.False(t, reached, "guarded test must stop before touching containers")
}
