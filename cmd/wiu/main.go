package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wondernetwork/wiu-go/pkg/cache"
	"github.com/wondernetwork/wiu-go/pkg/client"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile string
	logger  = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wiu",
	Short: "WIU network testing CLI",
	Long: `wiu is a command-line client for the WIU (Where's It Up) API.

It lists the edge servers available for testing, submits jobs that run
dig, ping, http, trace and other tests against a URL from those servers,
and retrieves the results.

Credentials are read from --id/--token, the WIU_ID/WIU_TOKEN environment
variables, or ~/.wiu/config.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.wiu")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("wiu")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()
		if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
			return errors.Wrapf(err, "read config %s", cfgFile)
		}

		var err error
		if viper.GetBool("verbose") {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.wiu/config.yaml)")
	flags.String("endpoint", client.DefaultEndpoint, "WIU API base URL")
	flags.String("id", "", "API client ID (hex)")
	flags.String("token", "", "API client token (hex)")
	flags.String("cache", "none", "Response cache: none, memory or redis")
	flags.String("redis-url", "redis://localhost:6379/0", "Redis URL used with --cache=redis")
	flags.Duration("cache-ttl", client.DefaultCacheTTL, "Lifetime of cached server lists and finished jobs")
	flags.Float64("rate-limit", 0, "Maximum API requests per second; 0 disables limiting")
	flags.Bool("verbose", false, "Log every request at debug level")
	_ = viper.BindPFlags(flags)

	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(retrieveCmd)
	rootCmd.AddCommand(versionCmd)
}

// ── configuration ────────────────────────────────────────────────────────────

// settings is the resolved connection configuration.
type settings struct {
	Endpoint  string
	ID        string
	Token     string
	Cache     string
	RedisURL  string
	CacheTTL  time.Duration
	RateLimit float64
}

func loadSettings() settings {
	return settings{
		Endpoint:  viper.GetString("endpoint"),
		ID:        viper.GetString("id"),
		Token:     viper.GetString("token"),
		Cache:     viper.GetString("cache"),
		RedisURL:  viper.GetString("redis-url"),
		CacheTTL:  viper.GetDuration("cache-ttl"),
		RateLimit: viper.GetFloat64("rate-limit"),
	}
}

// newAPI builds a client from s, wrapped in the configured cache. The
// returned func releases the cache backend.
func newAPI(ctx context.Context, s settings, logger *zap.Logger) (client.API, func(), error) {
	noop := func() {}

	opts := []client.Option{
		client.WithBaseURL(s.Endpoint),
		client.WithLogger(logger),
	}
	if s.RateLimit > 0 {
		opts = append(opts, client.WithRateLimit(s.RateLimit, 1))
	}
	c, err := client.New(s.ID, s.Token, opts...)
	if err != nil {
		return nil, noop, err
	}

	cacheOpts := []client.CachingOption{
		client.WithTTL(s.CacheTTL),
		client.WithCacheLogger(logger),
	}
	switch s.Cache {
	case "", "none":
		return c, noop, nil
	case "memory":
		return client.NewCaching(c, cache.NewMemory(time.Minute), cacheOpts...), noop, nil
	case "redis":
		rc, err := cache.NewRedisFromURL(ctx, s.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		closer := func() {
			if err := rc.Close(); err != nil {
				logger.Warn("close redis", zap.Error(err))
			}
		}
		return client.NewCaching(c, rc, cacheOpts...), closer, nil
	default:
		return nil, noop, fmt.Errorf("unknown cache %q (want none, memory or redis)", s.Cache)
	}
}

// ── servers ──────────────────────────────────────────────────────────────────

var serversFormat string

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List the edge servers available for testing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, closeAPI, err := newAPI(ctx, loadSettings(), logger)
		if err != nil {
			return err
		}
		defer closeAPI()

		servers, err := api.Servers(ctx)
		if err != nil {
			return fmt.Errorf("list servers: %w", err)
		}
		return printServers(cmd.OutOrStdout(), servers, serversFormat)
	},
}

func init() {
	serversCmd.Flags().StringVar(&serversFormat, "format", "text", "Output format: text or json")
}

func printServers(w io.Writer, servers []client.Server, format string) error {
	if format == "json" {
		return writeJSON(w, servers)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range servers {
		var name string
		if err := json.Unmarshal(s, &name); err == nil {
			fmt.Fprintln(tw, name)
			continue
		}
		fmt.Fprintln(tw, string(s))
	}
	return tw.Flush()
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wiu CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wiu %s (%s)\n", version, client.DefaultUserAgent)
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
