package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/kolah/specmodel/internal/parser"
	"github.com/spf13/cobra"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "specmodel.yaml"

type Config struct {
	Spec     string         `koanf:"spec"`
	LogLevel string         `koanf:"log-level"`
	Output   string         `koanf:"output"`
	Resolver ResolverConfig `koanf:"resolver"`
	Loader   LoaderConfig   `koanf:"loader"`
}

type ResolverConfig struct {
	MergeSiblings bool `koanf:"merge-siblings"`
	Prefetch      bool `koanf:"prefetch"`
}

type LoaderConfig struct {
	HTTPTimeout  time.Duration `koanf:"http-timeout"`
	MaxDocuments int           `koanf:"max-documents"`
	MaxSize      int64         `koanf:"max-size"`
}

// BindCommonFlags binds the flags shared by every command
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: "+DefaultFile+")")
	flags.StringP("spec", "s", "", "OpenAPI document path or URL")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.StringP("output", "o", "", "Output format: yaml, json")
	flags.Bool("merge-siblings", false, "Merge keys written beside $ref into the referenced schema")
	flags.Bool("prefetch", false, "Fetch referenced documents concurrently before resolving")
	flags.Duration("http-timeout", 0, "Timeout for each HTTP fetch")
	flags.Int("max-documents", 0, "Maximum number of documents to load (0: unlimited)")
	flags.Int64("max-size", 0, "Maximum size of a single document in bytes")
}

// Load reads the config file and applies flag overrides. A positional
// argument, when present, names the OpenAPI document.
func Load(cmd *cobra.Command, args []string) (*Config, error) {
	k := koanf.New(".")

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// The positional spec overrides the config file
	if len(args) > 0 {
		cfg.Spec = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getBool := func(name string) bool {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetBool(name); err == nil {
			return v
		}
		return false
	}

	getInt64 := func(name string) int64 {
		if v, err := cmd.Flags().GetInt64(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetInt64(name); err == nil {
			return v
		}
		return 0
	}

	getInt := func(name string) int {
		if v, err := cmd.Flags().GetInt(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetInt(name); err == nil {
			return v
		}
		return 0
	}

	getDuration := func(name string) time.Duration {
		if v, err := cmd.Flags().GetDuration(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetDuration(name); err == nil {
			return v
		}
		return 0
	}

	if v := getString("spec"); v != "" {
		m["spec"] = v
	}
	if v := getString("log-level"); v != "" {
		m["log-level"] = v
	}
	if v := getString("output"); v != "" {
		m["output"] = v
	}
	if flagChanged("merge-siblings") {
		m["resolver.merge-siblings"] = getBool("merge-siblings")
	}
	if flagChanged("prefetch") {
		m["resolver.prefetch"] = getBool("prefetch")
	}
	if flagChanged("http-timeout") {
		m["loader.http-timeout"] = getDuration("http-timeout")
	}
	if flagChanged("max-documents") {
		m["loader.max-documents"] = getInt("max-documents")
	}
	if flagChanged("max-size") {
		m["loader.max-size"] = getInt64("max-size")
	}

	return m
}

func (c *Config) Validate() error {
	if c.Spec == "" {
		return fmt.Errorf("spec file is required")
	}

	validOutputs := map[string]bool{"": true, "yaml": true, "json": true}
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid output format: %s (valid: yaml, json)", c.Output)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if c.Loader.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout cannot be negative: %s", c.Loader.HTTPTimeout)
	}
	if c.Loader.MaxDocuments < 0 {
		return fmt.Errorf("max documents cannot be negative: %d", c.Loader.MaxDocuments)
	}
	if c.Loader.MaxSize < 0 {
		return fmt.Errorf("max size cannot be negative: %d", c.Loader.MaxSize)
	}

	return nil
}

// Level returns the configured log level, warn when unset.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.LogLevel)
	}
	return level, nil
}

// ParserOptions translates the config into parse session options.
func (c *Config) ParserOptions(logger *slog.Logger) []parser.Option {
	return []parser.Option{
		parser.WithLogger(logger),
		parser.WithMergeSiblings(c.Resolver.MergeSiblings),
		parser.WithPrefetch(c.Resolver.Prefetch),
		parser.WithMaxDocuments(c.Loader.MaxDocuments),
		parser.WithMaxSize(c.Loader.MaxSize),
		parser.WithHTTPTimeout(c.Loader.HTTPTimeout),
	}
}
