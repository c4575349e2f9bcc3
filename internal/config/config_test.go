package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "DB_HOST", "DB_NAME", "JWT_TTL_HOURS", "IMAGE_DIR", "ADMIN_LOGIN", "ADMIN_PASSWORD"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "resources/images", cfg.ImageDir)
	assert.Equal(t, "admin", cfg.AdminLogin)
	assert.Empty(t, cfg.AdminPassword)
	assert.Contains(t, cfg.DSN(), "host=localhost")
	assert.Contains(t, cfg.DSN(), "dbname=shoe_shop")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("PORT", "8080")

	cfg := Load()
	assert.Equal(t, "postgres://u:p@db:5432/shop", cfg.DSN())
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "8080", cfg.Port)

	t.Setenv("JWT_TTL_HOURS", "soon")
	assert.Equal(t, 24*time.Hour, Load().JWTTTL)
}
