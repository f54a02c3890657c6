package fixtures

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_CreatesAdminAndProjects(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	ids, err := Seed(ctx, store.Users(), store.Projects(), Defaults{
		AdminPhone: "whatsapp:+6281100000000",
		AdminName:  "HR Admin",
		Projects:   []string{"General", "", "Payroll"},
	}, logger.Discard())
	require.NoError(t, err)

	admin, err := store.Users().GetByID(ctx, ids.AdminID)
	require.NoError(t, err)
	assert.True(t, admin.IsHR)
	assert.True(t, admin.IsManager)
	assert.False(t, admin.HasCredentials())

	require.Len(t, ids.ProjectIDs, 2)
	general, err := store.Projects().GetByName(ctx, "General")
	require.NoError(t, err)
	assert.Equal(t, ids.ProjectIDs["General"], general.ID)
	assert.Equal(t, admin.ID, general.ManagerID)
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	defaults := Defaults{AdminPhone: "whatsapp:+6281100000000", Projects: []string{"General"}}

	first, err := Seed(ctx, store.Users(), store.Projects(), defaults, logger.Discard())
	require.NoError(t, err)
	second, err := Seed(ctx, store.Users(), store.Projects(), defaults, logger.Discard())
	require.NoError(t, err)

	assert.Equal(t, first.AdminID, second.AdminID)
	assert.Equal(t, first.ProjectIDs, second.ProjectIDs)
}

func TestSeed_RequiresPhone(t *testing.T) {
	store := memory.NewStore()

	_, err := Seed(context.Background(), store.Users(), store.Projects(), Defaults{}, logger.Discard())
	assert.Error(t, err)
}
