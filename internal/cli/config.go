package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/generator"
	"github.com/toyz/autoiface/internal/pipeline"
	"github.com/toyz/autoiface/internal/utils"
)

const (
	// ConfigFileName is looked up from the working directory upward
	ConfigFileName = ".autoiface.yaml"
	// EnvPrefix prefixes environment overrides, e.g. AUTOIFACE_OUTPUT
	EnvPrefix = "AUTOIFACE"
	// DefaultDebounce is how long watch mode waits for file events to settle
	DefaultDebounce = 300 * time.Millisecond
)

// Config holds the resolved configuration of a run
type Config struct {
	// Output is the directory contracts are written to. Empty writes each
	// contract next to the file that declared its type.
	Output    string   `mapstructure:"output"`
	Extension string   `mapstructure:"extension"`
	Markers   []string `mapstructure:"markers"`

	Tool     ToolConfig     `mapstructure:"tool"`
	Contract ContractConfig `mapstructure:"contract"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Log      LogConfig      `mapstructure:"log"`

	// Verbose and Quiet come from flags only
	Verbose bool `mapstructure:"-"`
	Quiet   bool `mapstructure:"-"`

	// File is the config file that was read, if any
	File string `mapstructure:"-"`
}

// ToolConfig names the tool in the banner of generated files
type ToolConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ContractConfig controls contract rendering
type ContractConfig struct {
	Timestamp         bool `mapstructure:"timestamp"`
	CompilerGenerated bool `mapstructure:"compiler_generated"`
	EventKeyword      bool `mapstructure:"event_keyword"`
	Indent            int  `mapstructure:"indent"`
}

// PipelineConfig sizes the incremental cache
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	CacheSize   int `mapstructure:"cache_size"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// SetDefaults registers every key with its default. AutomaticEnv only
// sees keys viper knows about, so each key needs one.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", "")
	v.SetDefault("extension", generator.DefaultExtension)
	v.SetDefault("markers", []string{generator.DefaultMarkerName})

	v.SetDefault("tool.name", generator.DefaultToolName)
	v.SetDefault("tool.version", generator.Version)

	v.SetDefault("contract.timestamp", false)
	v.SetDefault("contract.compiler_generated", false)
	v.SetDefault("contract.event_keyword", false)
	v.SetDefault("contract.indent", 4)

	v.SetDefault("pipeline.concurrency", pipeline.DefaultConcurrency)
	v.SetDefault("pipeline.cache_size", pipeline.DefaultCacheSize)

	v.SetDefault("watch.debounce", DefaultDebounce)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "warn")
}

// NewViper creates a viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// LoadConfig resolves the configuration. A .env file in dir is loaded
// into the environment first; explicit environment variables win over it.
// configFile, when set, must exist; otherwise .autoiface.yaml is searched
// from dir upward.
func LoadConfig(v *viper.Viper, configFile, dir string) (*Config, error) {
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.WrapConfigurationError(envFile, "load", err)
		}
	}

	if configFile == "" {
		configFile = FindConfigFile(dir)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapConfigurationError(configFile, "read", err).
				WithSuggestion("Check that the file exists and is valid YAML")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapConfigurationError(configFile, "decode", err)
	}
	cfg.File = configFile

	version, err := generator.NormalizeVersion(cfg.Tool.Version)
	if err != nil {
		return nil, err
	}
	cfg.Tool.Version = version
	cfg.Extension = strings.TrimPrefix(cfg.Extension, ".")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfigFile walks from dir to the filesystem root and returns the
// first .autoiface.yaml found, or an empty string
func FindConfigFile(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Validate checks value ranges and names
func (c *Config) Validate() error {
	checks := []struct {
		field string
		value interface{}
		err   error
	}{
		{"output", c.Output, utils.Conditional(func(s string) bool { return s != "" },
			utils.Custom("output", "must be a directory", isDirOrMissing))(c.Output)},
		{"extension", c.Extension, utils.ValidateExtension("extension")(c.Extension)},
		{"markers", c.Markers, utils.NewValidatorChain(utils.SliceNotEmpty[string]("markers")).
			Add(utils.ValidateEach("markers", utils.ValidateMarkerName("marker"))).
			Validate(c.Markers)},
		{"tool.name", c.Tool.Name, utils.NotEmpty("tool.name")(c.Tool.Name)},
		{"contract.indent", c.Contract.Indent, utils.InRange("contract.indent", 1, 16)(c.Contract.Indent)},
		{"pipeline.concurrency", c.Pipeline.Concurrency, utils.InRange("pipeline.concurrency", 1, 256)(c.Pipeline.Concurrency)},
		{"pipeline.cache_size", c.Pipeline.CacheSize, utils.Custom("pipeline.cache_size", "must be positive",
			func(n int) bool { return n > 0 })(c.Pipeline.CacheSize)},
		{"watch.debounce", c.Watch.Debounce, utils.Custom("watch.debounce", "must not be negative",
			func(d time.Duration) bool { return d >= 0 })(c.Watch.Debounce)},
		{"log.level", c.Log.Level, utils.IsOneOf("log.level", "debug", "info", "warn", "error")(strings.ToLower(c.Log.Level))},
	}

	for _, check := range checks {
		if check.err == nil {
			continue
		}
		constraint := check.err.Error()
		var ve utils.ValidationError
		if errors.As(check.err, &ve) {
			constraint = ve.Message
		}
		return errors.NewValidationError(check.field, check.value, constraint).
			WithSuggestion("Fix '" + check.field + "' in " + ConfigFileName + " or the " +
				EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(check.field, ".", "_")) + " variable")
	}
	return nil
}

// isDirOrMissing accepts directories and paths that do not exist yet
func isDirOrMissing(path string) bool {
	info, err := os.Stat(path)
	return err != nil || info.IsDir()
}

// GeneratorOptions converts the contract settings into rendering options.
// now stamps the banner when timestamps are enabled.
func (c *Config) GeneratorOptions(now func() time.Time) generator.Options {
	opts := generator.Options{
		ToolName:          c.Tool.Name,
		Version:           c.Tool.Version,
		IndentSize:        c.Contract.Indent,
		CompilerGenerated: c.Contract.CompilerGenerated,
		EventKeyword:      c.Contract.EventKeyword,
		Extension:         c.Extension,
	}
	if c.Contract.Timestamp {
		if now == nil {
			now = time.Now
		}
		opts.Now = now
	}
	return opts
}

// DiagnosticLevel maps --quiet and --verbose to an output level
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	return utils.ParseDiagnosticLevel(c.Quiet, c.Verbose)
}
