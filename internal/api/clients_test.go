package api

import (
	"testing"

	"classic-armory/internal/config"
	"classic-armory/internal/constants"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamClientsUseConfiguredTimeout(t *testing.T) {
	cfg := &config.Config{}

	blizzard := NewBlizzardClient(cfg)
	assert.Equal(t, constants.ExternalAPITimeout, blizzard.client.ReadTimeout)
	assert.Equal(t, constants.ExternalAPITimeout, blizzard.client.WriteTimeout)

	logs := NewWarcraftLogsClient(cfg)
	assert.Equal(t, constants.ExternalAPITimeout, logs.client.ReadTimeout)
	assert.Equal(t, constants.ExternalAPITimeout, logs.client.WriteTimeout)
}
