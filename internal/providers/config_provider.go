package providers

import (
	"errors"
	"fmt"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"path/filepath"
	"strings"
	"time"
)

const AppName = "MapComplete-MQTT"

var envBindings = map[string]string{
	"upstream.url":         "OSMCHA_URL",
	"upstream.token":       "OSMCHA_TOKEN",
	"upstream.pageSize":    "OSMCHA_PAGE_SIZE",
	"broker.host":          "MQTT_HOST",
	"broker.port":          "MQTT_PORT",
	"broker.username":      "MQTT_USERNAME",
	"broker.password":      "MQTT_PASSWORD",
	"broker.clientId":      "MQTT_CLIENT_ID",
	"statistic.interval":   "UPDATE_INTERVAL",
	"logger.level":         "LOG_LEVEL",
	"logger.dir":           "LOG_DIR",
	"webServer.enabled":    "HTTP_ENABLED",
	"webServer.port":       "HTTP_PORT",
	"metrics.enabled":      "METRICS_ENABLED",
	"persistence.filePath": "CACHE_SNAPSHOT",
	"dryRun":               "DRY_RUN",
	"debug":                "DEBUG",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("upstream.url", "https://osmcha.org/api/v1/changesets/")
	v.SetDefault("upstream.editor", "MapComplete")
	v.SetDefault("upstream.pageSize", 100)
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("broker.host", "localhost")
	v.SetDefault("broker.port", 1883)
	v.SetDefault("broker.clientId", "mapcomplete-mqtt")
	v.SetDefault("broker.topicPrefix", "mapcomplete/statistics")
	v.SetDefault("broker.discoveryPrefix", "homeassistant")
	v.SetDefault("statistic.interval", 5*time.Minute)
	v.SetDefault("statistic.cycleTimeout", 4*time.Minute)
	v.SetDefault("theme.defaultColor", "#70c549")
	v.SetDefault("theme.defaultIcon", "https://mapcomplete.org/assets/svg/add.svg")
	v.SetDefault("theme.repositoryBase", "https://raw.githubusercontent.com/pietervdvn/MapComplete/")
	v.SetDefault("webServer.enabled", false)
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("persistence.saveInterval", 10*time.Minute)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 4)
	v.SetDefault("metrics.enabled", false)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if flags.ConfigPath != "" {
		filename := filepath.Base(flags.ConfigPath)
		v.AddConfigPath(filepath.Dir(flags.ConfigPath))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")

		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err := v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode || v.GetBool("debug")
	conf.DryRun = flags.DryRun || v.GetBool("dryRun")
	if conf.Debug {
		conf.Logger.Level = "debug"
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	return &conf, nil
}
