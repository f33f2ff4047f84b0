package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("NG_INT", "42")
	t.Setenv("NG_BOOL", "true")
	t.Setenv("NG_DUR", "3s")
	t.Setenv("NG_BAD_DUR", "soon")

	assert.Equal(t, int64(42), GetIntEnv("NG_INT"))
	assert.Equal(t, int64(7), GetIntEnvOr("NG_MISSING", 7))
	assert.True(t, GetBoolEnv("NG_BOOL"))
	assert.Equal(t, 3*time.Second, GetDurationEnvOr("NG_DUR", time.Second))
	assert.Equal(t, time.Second, GetDurationEnvOr("NG_BAD_DUR", time.Second))
	assert.Equal(t, "fallback", GetEnvOr("NG_MISSING", "fallback"))
}

func TestCreateDatabaseInstanceDefaultsToMemorySQLite(t *testing.T) {
	db, err := CreateDatabaseInstance("", "", "release")
	assert.NoError(t, err)
	sqlDB, err := db.DB()
	assert.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}
