package structures

import "time"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
	DryRun     bool
}

type Server struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host" validate:"required"`
	Port    int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir"`
}

type UpstreamConfig struct {
	URL      string        `yaml:"url" validate:"required|fullUrl"`
	Token    string        `yaml:"token" validate:"required"`
	Editor   string        `yaml:"editor" validate:"required"`
	PageSize int           `yaml:"pageSize" validate:"required|min:1"`
	Timeout  time.Duration `yaml:"timeout" validate:"required|min:1"`
}

type BrokerConfig struct {
	Host            string `yaml:"host" validate:"required"`
	Port            int    `yaml:"port" validate:"required|uint|min:1"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	ClientID        string `yaml:"clientId" validate:"required"`
	TopicPrefix     string `yaml:"topicPrefix" validate:"required"`
	DiscoveryPrefix string `yaml:"discoveryPrefix" validate:"required"`
}

type StatisticConfig struct {
	Interval     time.Duration `yaml:"interval" validate:"required|min:1"`
	CycleTimeout time.Duration `yaml:"cycleTimeout" validate:"required|min:1"`
}

type ThemeConfig struct {
	DefaultColor   string `yaml:"defaultColor" validate:"required"`
	DefaultIcon    string `yaml:"defaultIcon" validate:"required"`
	RepositoryBase string `yaml:"repositoryBase" validate:"required|fullUrl"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	DryRun      bool
	Path        string
	Upstream    UpstreamConfig  `yaml:"upstream"`
	Broker      BrokerConfig    `yaml:"broker"`
	Statistic   StatisticConfig `yaml:"statistic"`
	Theme       ThemeConfig     `yaml:"theme"`
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}
