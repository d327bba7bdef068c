package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the canonical extract artifacts.
type DataConfig struct {
	ArtifactDir string `yaml:"artifact_dir" mapstructure:"artifact_dir"`
	RawDir      string `yaml:"raw_dir" mapstructure:"raw_dir"`
}

// SourcesConfig points at the raw input files consumed by the normalizer.
// Relative paths resolve against data.raw_dir.
type SourcesConfig struct {
	Tracts       string `yaml:"tracts" mapstructure:"tracts"`
	Percentiles  string `yaml:"tract_percentiles" mapstructure:"tract_percentiles"`
	TractsSQLite string `yaml:"tracts_sqlite" mapstructure:"tracts_sqlite"`
	TractsTable  string `yaml:"tracts_table" mapstructure:"tracts_table"`
	Housing      string `yaml:"housing" mapstructure:"housing"`
	HousingEnc   string `yaml:"housing_encoding" mapstructure:"housing_encoding"`
	QCT          string `yaml:"qct" mapstructure:"qct"`
	Counties     string `yaml:"counties" mapstructure:"counties"`
	States       string `yaml:"states" mapstructure:"states"`
	Tribes       string `yaml:"tribes" mapstructure:"tribes"`
}

// ExtractConfig tunes normalization.
type ExtractConfig struct {
	TargetSRID       int      `yaml:"target_srid" mapstructure:"target_srid"`
	DACFlag          string   `yaml:"dac_flag" mapstructure:"dac_flag"`
	HousingStatuses  []string `yaml:"housing_statuses" mapstructure:"housing_statuses"`
	ExcludeStateFIPS []string `yaml:"exclude_state_fips" mapstructure:"exclude_state_fips"`
	CartoShapefile   string   `yaml:"carto_shapefile" mapstructure:"carto_shapefile"`
}

// ReportConfig tunes the report assembler and map renderer.
type ReportConfig struct {
	Title       string `yaml:"title" mapstructure:"title"`
	MapWidth    int    `yaml:"map_width" mapstructure:"map_width"`
	MapHeight   int    `yaml:"map_height" mapstructure:"map_height"`
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
	DefaultEBLo int    `yaml:"default_eb_min" mapstructure:"default_eb_min"`
	DefaultEBHi int    `yaml:"default_eb_max" mapstructure:"default_eb_max"`
	// DefinitionsURL is linked from the cover page when set.
	DefinitionsURL string `yaml:"definitions_url" mapstructure:"definitions_url"`
	// IndicatorsFile overrides the embedded indicator catalog.
	IndicatorsFile string `yaml:"indicators_file" mapstructure:"indicators_file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// StoreConfig configures the PostGIS publishing target.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetchConfig configures raw boundary downloads.
type FetchConfig struct {
	Year        int     `yaml:"year" mapstructure:"year"`
	Resolution  string  `yaml:"resolution" mapstructure:"resolution"`
	Protocol    string  `yaml:"protocol" mapstructure:"protocol"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EQUITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.artifact_dir", "data/extracts")
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("sources.tracts", "MappingDisplay_Data.geojson")
	v.SetDefault("sources.tracts_table", "DAC_percentiles_data")
	v.SetDefault("sources.housing", "NHPD_properties.csv")
	v.SetDefault("sources.housing_encoding", "windows-1252")
	v.SetDefault("sources.qct", "QCT2023.csv")
	v.SetDefault("sources.counties", "cb_2022_us_county_500k.shp")
	v.SetDefault("sources.states", "cb_2022_us_state_500k.shp")
	v.SetDefault("sources.tribes", "cb_2022_us_aiannh_500k.shp")
	v.SetDefault("extract.target_srid", 4269)
	v.SetDefault("extract.dac_flag", "1")
	v.SetDefault("extract.housing_statuses", []string{"Active", "Inconclusive"})
	v.SetDefault("extract.exclude_state_fips", []string{"60", "66", "69", "72", "78"})
	v.SetDefault("extract.carto_shapefile", "carto/carto_dac.shp")
	v.SetDefault("report.title", "Equity Opportunity Report")
	v.SetDefault("report.map_width", 800)
	v.SetDefault("report.map_height", 400)
	v.SetDefault("report.output_dir", "reports")
	v.SetDefault("report.default_eb_min", 0)
	v.SetDefault("report.default_eb_max", 100)
	v.SetDefault("report.definitions_url", "https://www.energy.gov/sites/default/files/2023-06/DAC%20Data%20Definitions.pdf")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("fetch.year", 2022)
	v.SetDefault("fetch.resolution", "500k")
	v.SetDefault("fetch.protocol", "https")
	v.SetDefault("fetch.user_agent", "equity-report/1.0")
	v.SetDefault("fetch.rate_per_sec", 2.0)
	v.SetDefault("fetch.concurrency", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by a command.
func (c *Config) Validate(mode string) error {
	var errs []string
	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
		}
		if c.Data.ArtifactDir == "" {
			errs = append(errs, "data.artifact_dir is required")
		}
	case "report":
		if c.Data.ArtifactDir == "" {
			errs = append(errs, "data.artifact_dir is required")
		}
	case "normalize":
		if c.Data.ArtifactDir == "" {
			errs = append(errs, "data.artifact_dir is required")
		}
		if c.Sources.Tracts == "" {
			errs = append(errs, "sources.tracts is required")
		}
		if c.Sources.TractsSQLite != "" && c.Sources.TractsTable == "" {
			errs = append(errs, "sources.tracts_table is required with sources.tracts_sqlite")
		}
		if c.Extract.TargetSRID == 0 {
			errs = append(errs, "extract.target_srid is required")
		}
	case "publish":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "fetch":
		if c.Fetch.Protocol != "https" && c.Fetch.Protocol != "ftp" {
			errs = append(errs, fmt.Sprintf("fetch.protocol %q must be https or ftp", c.Fetch.Protocol))
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
