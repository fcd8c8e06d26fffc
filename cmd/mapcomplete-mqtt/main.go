package main

import (
	"flag"
	"github.com/RobinLinde/MapComplete-MQTT/internal/di"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"github.com/rs/zerolog/log"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "", "path to a YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug logging")
	flag.BoolVar(&flags.DryRun, "dry-run", false, "run one cycle without publishing to the broker")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		log.Fatal().Err(err).Msg("MapComplete-MQTT stopped")
	}
}
