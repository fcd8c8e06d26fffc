package providers

import (
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigProvider_DefaultsAndEnv(t *testing.T) {
	t.Setenv("OSMCHA_TOKEN", "abc")
	t.Setenv("MQTT_HOST", "broker.local")
	t.Setenv("MQTT_PORT", "8883")
	t.Setenv("UPDATE_INTERVAL", "90s")

	conf, err := NewConfigProvider(&structures.CliFlags{})
	require.NoError(t, err)

	assert.Equal(t, AppName, conf.AppName)
	assert.Equal(t, "abc", conf.Upstream.Token)
	assert.Equal(t, "broker.local", conf.Broker.Host)
	assert.Equal(t, 8883, conf.Broker.Port)
	assert.Equal(t, 90*time.Second, conf.Statistic.Interval)
	assert.Equal(t, 100, conf.Upstream.PageSize)
	assert.Equal(t, "MapComplete", conf.Upstream.Editor)
	assert.Equal(t, "mapcomplete/statistics", conf.Broker.TopicPrefix)
	assert.False(t, conf.DryRun)
}

func TestNewConfigProvider_MissingTokenIsFatal(t *testing.T) {
	t.Setenv("OSMCHA_TOKEN", "")

	_, err := NewConfigProvider(&structures.CliFlags{})
	assert.Error(t, err)
}

func TestNewConfigProvider_FlagsOverride(t *testing.T) {
	t.Setenv("OSMCHA_TOKEN", "abc")

	conf, err := NewConfigProvider(&structures.CliFlags{DebugMode: true, DryRun: true})
	require.NoError(t, err)

	assert.True(t, conf.Debug)
	assert.True(t, conf.DryRun)
	assert.Equal(t, "debug", conf.Logger.Level)
}

func TestNewConfigProvider_DryRunFromEnv(t *testing.T) {
	t.Setenv("OSMCHA_TOKEN", "abc")
	t.Setenv("DRY_RUN", "true")

	conf, err := NewConfigProvider(&structures.CliFlags{})
	require.NoError(t, err)
	assert.True(t, conf.DryRun)
}

func TestNewConfigProvider_YamlFile(t *testing.T) {
	t.Setenv("OSMCHA_TOKEN", "abc")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "broker:\n  topicPrefix: custom/prefix\nupstream:\n  pageSize: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "custom/prefix", conf.Broker.TopicPrefix)
	assert.Equal(t, 50, conf.Upstream.PageSize)
	assert.Equal(t, path, conf.Path)
}

func TestNewConfigProvider_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("OSMCHA_TOKEN", "abc")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	require.NoError(t, err)
	assert.Equal(t, "homeassistant", conf.Broker.DiscoveryPrefix)
}
