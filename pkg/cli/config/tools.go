package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/anglerlab/finbot/pkg/domain/interfaces"
	"github.com/anglerlab/finbot/pkg/service/tools"
	"github.com/anglerlab/finbot/pkg/utils/logging"
)

// Tools holds configuration for the closed tool set
type Tools struct {
	weatherBaseURL string
	weatherAPIKey  string
	sizeTablePath  string
}

// Flags returns CLI flags for tool configuration
func (t *Tools) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "weather-base-url",
			Usage:       "OpenWeatherMap API base URL",
			Value:       tools.DefaultWeatherBaseURL,
			Sources:     cli.EnvVars("FINBOT_WEATHER_BASE_URL"),
			Destination: &t.weatherBaseURL,
		},
		&cli.StringFlag{
			Name:        "weather-api-key",
			Usage:       "OpenWeatherMap API key (weather tool is disabled when empty)",
			Sources:     cli.EnvVars("FINBOT_WEATHER_API_KEY"),
			Destination: &t.weatherAPIKey,
		},
		&cli.StringFlag{
			Name:        "size-table",
			Usage:       "TOML file overriding the built-in legal size table",
			Sources:     cli.EnvVars("FINBOT_SIZE_TABLE"),
			Destination: &t.sizeTablePath,
		},
	}
}

// LogAttrs returns log attributes for the tool configuration
func (t *Tools) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("weather_base_url", t.weatherBaseURL),
		slog.Bool("weather_api_key_set", t.weatherAPIKey != ""),
		slog.String("size_table_path", t.sizeTablePath),
	}
}

// Configure builds the tool registry. The legal size tool is always
// registered; the weather tool only when an API key is configured.
func (t *Tools) Configure() (*tools.Registry, error) {
	sizeTable := tools.DefaultSizeTable()
	if t.sizeTablePath != "" {
		loaded, err := tools.LoadSizeTable(t.sizeTablePath)
		if err != nil {
			return nil, err
		}
		sizeTable = loaded
	}

	toolSet := []interfaces.Tool{tools.NewLegalSizeTool(sizeTable)}
	if t.weatherAPIKey != "" {
		provider, err := tools.NewOpenWeatherMapProvider(t.weatherBaseURL, t.weatherAPIKey)
		if err != nil {
			return nil, err
		}
		toolSet = append(toolSet, tools.NewWeatherTool(provider))
	} else {
		logging.Default().Warn("weather API key not configured, get_fishing_weather is disabled")
	}

	return tools.NewRegistry(toolSet...)
}
