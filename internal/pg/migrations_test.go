package pg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GlebRadaev/gofood/migrations"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrations.Migrations.ReadDir(".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "00001_init.sql")
}

func TestGooseLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	gooseLogger{}.Printf("OK   %s (%s)", "00001_init.sql", "12ms")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "OK   00001_init.sql (12ms)", logs.All()[0].Message)
}
