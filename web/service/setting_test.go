package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingDefaults(t *testing.T) {
	setup()
	defer teardown()

	service := SettingService{}

	port, err := service.GetPort()
	assert.NoError(t, err)
	assert.Equal(t, 8080, port)

	basePath, err := service.GetBasePath()
	assert.NoError(t, err)
	assert.Equal(t, "/", basePath)

	maxAge, err := service.GetSessionMaxAge()
	assert.NoError(t, err)
	assert.Equal(t, 60, maxAge)

	cleanupCron, err := service.GetKycCleanupCron()
	assert.NoError(t, err)
	assert.Equal(t, "@daily", cleanupCron)

	twoFactor, err := service.GetTwoFactorEnable()
	assert.NoError(t, err)
	assert.False(t, twoFactor)
}

func TestSettingUpdateAndReset(t *testing.T) {
	setup()
	defer teardown()

	service := SettingService{}

	assert.NoError(t, service.SetPort(9090))
	port, err := service.GetPort()
	assert.NoError(t, err)
	assert.Equal(t, 9090, port)

	assert.NoError(t, service.ResetSettings())
	port, err = service.GetPort()
	assert.NoError(t, err)
	assert.Equal(t, 8080, port)
}

func TestSecretIsStableAndHidden(t *testing.T) {
	setup()
	defer teardown()

	service := SettingService{}

	first, err := service.GetSecret()
	assert.NoError(t, err)
	assert.NotEmpty(t, first)

	// The generated secret is persisted, so a second read returns the same value.
	second, err := service.GetSecret()
	assert.NoError(t, err)
	assert.Equal(t, first, second)

	// The secret never leaves via the settings dump.
	all, err := service.GetAllSetting()
	assert.NoError(t, err)
	assert.NotNil(t, all)
}
