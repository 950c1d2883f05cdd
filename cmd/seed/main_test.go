package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queueless/internal/config"
	"queueless/internal/database/dbtest"
	"queueless/internal/domain"
	"queueless/internal/modules/auth"
	"queueless/internal/repository"
)

func TestSeed_RequiresAdminCredentials(t *testing.T) {
	err := seed(context.Background(), dbtest.Open(t), config.SeedConfig{AdminEmail: "root@example.com"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSeed_IsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	cfg := config.SeedConfig{
		AdminEmail:    "Root@Example.com",
		AdminPassword: "first-password",
		AdminName:     "Root",
		DemoCompany:   true,
	}
	require.NoError(t, seed(ctx, db, cfg, zerolog.Nop()))

	cfg.AdminPassword = "second-password"
	require.NoError(t, seed(ctx, db, cfg, zerolog.Nop()))

	users := repository.NewUserRepository(db)
	admin, err := users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformRoleAdmin, admin.PlatformRole)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "second-password"))

	var companies, services, hours int64
	require.NoError(t, db.Model(&domain.Company{}).Count(&companies).Error)
	require.NoError(t, db.Model(&domain.Service{}).Count(&services).Error)
	require.NoError(t, db.Model(&domain.WorkingHours{}).Count(&hours).Error)
	assert.Equal(t, int64(1), companies)
	assert.Equal(t, int64(2), services)
	assert.Equal(t, int64(5), hours)

	c, err := repository.NewCompanyRepository(db).GetBySlug(ctx, demoSlug)
	require.NoError(t, err)
	m, err := repository.NewMembershipRepository(db).Get(ctx, c.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleOwner, m.Role)
}
