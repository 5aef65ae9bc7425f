package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefrontE2E/internal/config"
	"storefrontE2E/internal/logger"
)

func TestRun_SkipsWithoutDatabase(t *testing.T) {
	cfg := &config.Cfg{Migrations: config.Migrations{Path: "file://does-not-exist"}}
	assert.NoError(t, Run(cfg, logger.Nop()))
}
