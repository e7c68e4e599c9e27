package cli

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joomcode/errorx"
	"github.com/urfave/cli/v2"

	"github.com/statsbridge/statsbridge/config"
	"github.com/statsbridge/statsbridge/publisher"
	"github.com/statsbridge/statsbridge/version"
)

type cliOption func(*cli.App) error

type customOptionsFactory = func() ([]cli.Flag, error)

func WithCLIName(name string) cliOption {
	return func(app *cli.App) error {
		app.Name = name
		return nil
	}
}

func WithCLIVersion(str string) cliOption {
	return func(app *cli.App) error {
		app.Version = str
		return nil
	}
}

func WithCLIUsageHeader(desc string) cliOption {
	return func(app *cli.App) error {
		app.Usage = desc
		return nil
	}
}

func WithCLICustomOptions(factory customOptionsFactory) cliOption {
	return func(app *cli.App) error {
		custom, err := factory()
		if err != nil {
			return err
		}

		app.Flags = append(app.Flags, custom...)
		return nil
	}
}

// NewConfigFromCLI reads config from os.Args. It returns config, error (if any) and a bool value
// indicating that the usage message, version or config was shown, no further action required.
//
// The config file (if any) is loaded first, so CLI flags and env vars take precedence over it.
func NewConfigFromCLI(args []string, opts ...cliOption) (*config.Config, error, bool) {
	c := config.NewConfig()

	var helpOrVersionWereShown = true
	var shouldPrintConfig bool
	var configPath string
	var metricsFilter, statsdTags string
	var enatsRoutes string
	var presets string

	if path := lookupConfigPath(args); path != "" {
		if err := c.LoadFromFile(path); err != nil {
			return &config.Config{}, err, false
		}
	}

	// Print raw version without prefix
	cli.VersionPrinter = func(cCtx *cli.Context) {
		_, _ = fmt.Fprintf(cCtx.App.Writer, "%v\n", cCtx.App.Version)
	}

	flags := []cli.Flag{}
	flags = append(flags, listenerCLIFlags(&c)...)
	flags = append(flags, pipelineCLIFlags(&c)...)
	flags = append(flags, aggregatorCLIFlags(&c)...)
	flags = append(flags, senderCLIFlags(&c)...)
	flags = append(flags, publisherCLIFlags(&c)...)
	flags = append(flags, natsCLIFlags(&c)...)
	flags = append(flags, redisCLIFlags(&c)...)
	flags = append(flags, httpCLIFlags(&c)...)
	flags = append(flags, embeddedNatsCLIFlags(&c, &enatsRoutes)...)
	flags = append(flags, logCLIFlags(&c)...)
	flags = append(flags, metricsCLIFlags(&c, &metricsFilter, &statsdTags)...)
	flags = append(flags, serverCLIFlags(&c)...)
	flags = append(flags, miscCLIFlags(&c, &configPath, &shouldPrintConfig, &presets)...)

	app := &cli.App{
		Name:            "statsbridge",
		Version:         version.Version(),
		Usage:           "statsbridge, statsd metrics aggregation and publishing service",
		HideHelpCommand: true,
		Flags:           flags,
		Action: func(nc *cli.Context) error {
			helpOrVersionWereShown = false
			return nil
		},
	}

	for _, o := range opts {
		err := o(app)
		if err != nil {
			return &config.Config{}, err, false
		}
	}

	err := app.Run(args)
	if err != nil {
		return &config.Config{}, err, false
	}

	// helpOrVersionWereShown = false indicates that the default action has been run.
	// true means that help/version message was displayed.
	//
	// Unfortunately, cli module does not support another way of detecting if or which
	// command was run.
	if helpOrVersionWereShown {
		return &config.Config{}, nil, true
	}

	c.Log.Resolve()

	if metricsFilter != "" {
		c.Metrics.LogFilter = strings.Split(metricsFilter, ",")
	}

	if statsdTags != "" {
		tags, err := parseTags(statsdTags)
		if err != nil {
			return &config.Config{}, err, false
		}

		c.Metrics.Statsd.Tags = tags
	}

	if enatsRoutes != "" {
		c.EmbeddedNats.Routes = strings.Split(enatsRoutes, ",")
	}

	if presets != "" {
		c.UserPresets = strings.Split(presets, ",")
	}

	if shouldPrintConfig {
		fmt.Print(c.ToToml())
		return &c, nil, true
	}

	return &c, nil, false
}

// Flags ordering issue: https://github.com/urfave/cli/pull/1430

const (
	listenerCategoryDescription     = "STATSD LISTENER:"
	pipelineCategoryDescription     = "PIPELINE:"
	aggregatorCategoryDescription   = "AGGREGATION:"
	senderCategoryDescription       = "SENDER:"
	publisherCategoryDescription    = "PUBLISHER:"
	natsCategoryDescription         = "NATS:"
	redisCategoryDescription        = "REDIS:"
	httpCategoryDescription         = "HTTP:"
	embeddedNatsCategoryDescription = "EMBEDDED NATS:"
	logCategoryDescription          = "LOG:"
	metricsCategoryDescription      = "METRICS:"
	serverCategoryDescription       = "HTTP SERVER:"
	miscCategoryDescription         = "MISC:"

	envPrefix = "STATSBRIDGE_"

	configPathFlag = "config-path"
)

var (
	splitFlagName = regexp.MustCompile("[_-]")
)

// listenerCLIFlags returns statsd listener flags
func listenerCLIFlags(c *config.Config) []cli.Flag {
	return withDefaults(listenerCategoryDescription, []cli.Flag{
		&cli.StringFlag{
			Name:        "host",
			Value:       c.Listener.Host,
			Usage:       "Statsd listener host (both TCP and UDP)",
			Destination: &c.Listener.Host,
		},

		&cli.IntFlag{
			Name:        "port",
			Value:       c.Listener.Port,
			Usage:       "Statsd listener port (both TCP and UDP)",
			Destination: &c.Listener.Port,
		},

		&cli.IntFlag{
			Name:        "max-conn",
			Value:       c.Listener.MaxConn,
			Usage:       "Limit simultaneous TCP connections (0 – without limit)",
			Destination: &c.Listener.MaxConn,
		},

		&cli.IntFlag{
			Name:        "max_packet_size",
			Value:       c.Listener.MaxPacketSize,
			Usage:       "Max UDP datagram size",
			Destination: &c.Listener.MaxPacketSize,
		},
	})
}

// pipelineCLIFlags returns flush and send schedule flags
func pipelineCLIFlags(c *config.Config) []cli.Flag {
	return withDefaults(pipelineCategoryDescription, []cli.Flag{
		&cli.IntFlag{
			Name:        "flush_interval",
			Value:       c.Pipeline.FlushInterval,
			Usage:       "How often to flush aggregated metrics to the outgoing buffer (in seconds)",
			Destination: &c.Pipeline.FlushInterval,
		},

		&cli.IntFlag{
			Name:        "send_interval",
			Value:       c.Pipeline.SendInterval,
			Usage:       "How often to publish the outgoing buffer (in seconds)",
			Destination: &c.Pipeline.SendInterval,
		},

		&cli.StringFlag{
			Name:        "client_name",
			Value:       c.Pipeline.ClientName,
			Usage:       "Client name used in result envelopes and metric paths",
			Destination: &c.Pipeline.ClientName,
		},

		&cli.IntFlag{
			Name:        "shutdown_timeout",
			Value:       c.ShutdownTimeout,
			Usage:       "Graceful shutdown timeout (in seconds)",
			Destination: &c.ShutdownTimeout,
		},
	})
}

// aggregatorCLIFlags returns aggregation and path rendering flags
func aggregatorCLIFlags(c *config.Config) []cli.Flag {
	return withDefaults(aggregatorCategoryDescription, []cli.Flag{
		&cli.IntFlag{
			Name:        "percentile",
			Value:       c.Aggregator.Percentile,
			Usage:       "Percentile to calculate for timers (upper_<pct>)",
			Destination: &c.Aggregator.Percentile,
		},

		&cli.BoolFlag{
			Name:        "add_client_prefix",
			Value:       c.Aggregator.AddClientPrefix,
			Usage:       "Prepend the client name to metric paths",
			Destination: &c.Aggregator.AddClientPrefix,
		},

		&cli.StringFlag{
			Name:        "path_prefix",
			Value:       c.Aggregator.PathPrefix,
			Usage:       "Metric paths prefix (goes after the client name)",
			Destination: &c.Aggregator.PathPrefix,
		},

		&cli.BoolFlag{
			Name:        "legacy_gauges_label",
			Value:       c.Aggregator.LegacyGaugesLabel,
			Usage:       "Use the legacy \"guages\" label in gauge paths",
			Destination: &c.Aggregator.LegacyGaugesLabel,
		},
	})
}

// senderCLIFlags returns outgoing buffer flags
func senderCLIFlags(c *config.Config) []cli.Flag {
	return withDefaults(senderCategoryDescription, []cli.Flag{
		&cli.IntFlag{
			Name:        "max_buffer_lines",
			Value:       c.Sender.MaxBufferLines,
			Usage:       "Max number of lines kept in the outgoing buffer, the oldest are dropped (0 – without limit)",
			Destination: &c.Sender.MaxBufferLines,
		},

		&cli.BoolFlag{
			Name:        "retain_on_failure",
			Value:       c.Sender.RetainOnFailure,
			Usage:       "Keep lines in the buffer when publishing fails",
			Destination: &c.Sender.RetainOnFailure,
		},

		&cli.StringFlag{
			Name:        "encoding",
			Value:       c.Sender.Encoding,
			Usage:       "Result envelope encoding (json or msgpack)",
			Destination: &c.Sender.Encoding,
		},
	})
}

// publisherCLIFlags returns publisher selection flags
func publisherCLIFlags(c *config.Config) []cli.Flag {
	return withDefaults(publisherCategoryDescription, []cli.Flag{
		&cli.StringFlag{
			Name:        "publisher",
			Value:       c.Publisher.Adapter,
			Usage:       fmt.Sprintf("Publisher adapter to use (%s)", strings.Join(publisher.Adapters(), ", ")),
			Destination: &c.Publisher.Adapter,
		},
	})
}

// natsCLIFlags returns NATS publisher flags
func natsCLIFlags(c *config.Config) []cli.Flag {
	return withDefaults(natsCategoryDescription, []cli.Flag{
		&cli.StringFlag{
			Name:        "nats_servers",
			Value:       c.NATS.Servers,
			Usage:       "Comma separated list of NATS cluster servers",
			Destination: &c.NATS.Servers,
		},

		&cli.StringFlag{
			Name:        "nats_subject",
			Value:       c.NATS.Subject,
			Usage:       "NATS subject to publish results to",
			Destination: &c.NATS.Subject,
		},

		&cli.BoolFlag{
			Name:        "nats_dont_randomize_servers",
			Value:       c.NATS.DontRandomizeServers,
			Usage:       "Pass this option to disable NATS servers randomization during (re-)connect",
			Destination: &c.NATS.DontRandomizeServers,
		},

		&cli.IntFlag{
			Name:        "nats_max_reconnect_attempts",
			Value:       c.NATS.MaxReconnectAttempts,
			Usage:       "Max number of NATS reconnect attempts",
			Destination: &c.NATS.MaxReconnectAttempts,
		},
	})
}

// redisCLIFlags returns Redis publisher flags
func redisCLIFlags(c *config.Config) []cli.Flag {
	return withDefaults(redisCategoryDescription, []cli.Flag{
		&cli.StringFlag{
			Name:        "redis_url",
			Value:       c.Redis.URL,
			Usage:       "Redis url",
			EnvVars:     []string{envPrefix + "REDIS_URL", "REDIS_URL"},
			Destination: &c.Redis.URL,
		},

		&cli.StringFlag{
			Name:        "redis_channel",
			Value:       c.Redis.Channel,
			Usage:       "Redis channel (or list key) to publish results to",
			Destination: &c.Redis.Channel,
		},

		&cli.StringFlag{
			Name:        "redis_mode",
			Value:       c.Redis.Mode,
			Usage:       "Redis publishing mode (channel – PUBLISH, list – RPUSH)",
			Destination: &c.Redis.Mode,
		},

		&cli.StringFlag{
			Name:        "redis_sentinels",
			Value:       c.Redis.Sentinels,
			Usage:       "Comma separated list of sentinel hosts, format: 'hostname:port,..'",
			Destination: &c.Redis.Sentinels,
		},

		&cli.IntFlag{
			Name:        "redis_keepalive_interval",
			Value:       c.Redis.KeepalivePingInterval,
			Usage:       "Interval to periodically ping Redis to make sure it's alive",
			Destination: &c.Redis.KeepalivePingInterval,
		},

		&cli.BoolFlag{
			Name:        "redis_tls_verify",
			Value:       c.Redis.TLSVerify,
			Usage:       "Verify Redis server TLS certificate (only if URL protocol is rediss://)",
			Destination: &c.Redis.TLSVerify,
		},
	})
}

// httpCLIFlags returns HTTP publisher flags
func httpCLIFlags(c *config.Config) []cli.Flag {
	return withDefaults(httpCategoryDescription, []cli.Flag{
		&cli.StringFlag{
			Name:        "http_url",
			Value:       c.Publisher.HTTP.URL,
			Usage:       "URL to POST results to",
			Destination: &c.Publisher.HTTP.URL,
		},

		&cli.StringFlag{
			Name:        "http_token",
			Value:       c.Publisher.HTTP.Token,
			Usage:       "Bearer token to authorize publish requests",
			Destination: &c.Publisher.HTTP.Token,
		},

		&cli.IntFlag{
			Name:        "http_timeout",
			Value:       c.Publisher.HTTP.Timeout,
			Usage:       "Publish request timeout (in seconds)",
			Destination: &c.Publisher.HTTP.Timeout,
		},
	})
}

// embeddedNatsCLIFlags returns embedded NATS server flags
func embeddedNatsCLIFlags(c *config.Config, routes *string) []cli.Flag {
	return withDefaults(embeddedNatsCategoryDescription, []cli.Flag{
		&cli.BoolFlag{
			Name:        "embed_nats",
			Value:       c.EmbeddedNats.Enabled,
			Usage:       "Enable embedded NATS server and use it for publishing",
			Destination: &c.EmbeddedNats.Enabled,
		},

		&cli.StringFlag{
			Name:        "enats_addr",
			Value:       c.EmbeddedNats.ServiceAddr,
			Usage:       "NATS server bind address",
			Destination: &c.EmbeddedNats.ServiceAddr,
		},

		&cli.StringFlag{
			Name:        "enats_name",
			Value:       c.EmbeddedNats.Name,
			Usage:       "NATS server name (must be unique within the cluster)",
			Destination: &c.EmbeddedNats.Name,
		},

		&cli.StringFlag{
			Name:        "enats_cluster",
			Value:       c.EmbeddedNats.ClusterAddr,
			Usage:       "NATS cluster service bind address",
			Destination: &c.EmbeddedNats.ClusterAddr,
		},

		&cli.StringFlag{
			Name:        "enats_cluster_name",
			Value:       c.EmbeddedNats.ClusterName,
			Usage:       "NATS cluster name",
			Destination: &c.EmbeddedNats.ClusterName,
		},

		&cli.StringFlag{
			Name:        "enats_cluster_routes",
			Usage:       "Comma-separated list of known other NATS cluster nodes",
			Destination: routes,
		},

		&cli.BoolFlag{
			Name:        "enats_debug",
			Value:       c.EmbeddedNats.Debug,
			Usage:       "Enable NATS server logs",
			Destination: &c.EmbeddedNats.Debug,
		},

		&cli.BoolFlag{
			Name:        "enats_trace",
			Value:       c.EmbeddedNats.Trace,
			Usage:       "Enable NATS server protocol trace logs",
			Destination: &c.EmbeddedNats.Trace,
			Hidden:      true,
		},
	})
}

// logCLIFlags returns logging flags
func logCLIFlags(c *config.Config) []cli.Flag {
	return withDefaults(logCategoryDescription, []cli.Flag{
		&cli.StringFlag{
			Name:        "log_level",
			Value:       c.Log.LogLevel,
			Usage:       "Set logging level (debug/info/warn/error)",
			Destination: &c.Log.LogLevel,
		},

		&cli.StringFlag{
			Name:        "log_format",
			Value:       c.Log.LogFormat,
			Usage:       "Set logging format (text/json)",
			Destination: &c.Log.LogFormat,
		},

		&cli.BoolFlag{
			Name:        "debug",
			Value:       c.Log.Debug,
			Usage:       "Enable debug mode (more verbose logging)",
			Destination: &c.Log.Debug,
		},
	})
}

// metricsCLIFlags returns internal metrics flags
func metricsCLIFlags(c *config.Config, filter *string, tags *string) []cli.Flag {
	return withDefaults(metricsCategoryDescription, []cli.Flag{
		&cli.BoolFlag{
			Name:        "metrics_log",
			Value:       c.Metrics.Log,
			Usage:       "Enable metrics logging (with info level)",
			Destination: &c.Metrics.Log,
		},

		&cli.IntFlag{
			Name:        "metrics_rotate_interval",
			Value:       c.Metrics.RotateInterval,
			Usage:       "Specify how often to flush metrics to writers (logs, statsd) (in seconds)",
			Destination: &c.Metrics.RotateInterval,
		},

		&cli.StringFlag{
			Name:        "metrics_log_filter",
			Usage:       "Specify list of metrics to print to log (to reduce the output)",
			Destination: filter,
		},

		&cli.StringFlag{
			Name:        "statsd_host",
			Value:       c.Metrics.Statsd.Host,
			Usage:       "Statsd server to report internal metrics to (host:port)",
			Destination: &c.Metrics.Statsd.Host,
		},

		&cli.StringFlag{
			Name:        "statsd_prefix",
			Value:       c.Metrics.Statsd.Prefix,
			Usage:       "Statsd keys prefix",
			Destination: &c.Metrics.Statsd.Prefix,
		},

		&cli.IntFlag{
			Name:        "statsd_max_packet_size",
			Value:       c.Metrics.Statsd.MaxPacketSize,
			Usage:       "Statsd client maximum UDP packet size",
			Destination: &c.Metrics.Statsd.MaxPacketSize,
		},

		&cli.StringFlag{
			Name:        "statsd_tags_format",
			Value:       c.Metrics.Statsd.TagFormat,
			Usage:       `One of "datadog", "influxdb", or "graphite"`,
			Destination: &c.Metrics.Statsd.TagFormat,
		},

		&cli.StringFlag{
			Name:        "statsd_tags",
			Usage:       "Comma-separated list of default tags, format: 'key:value,..'",
			Destination: tags,
		},
	})
}

// serverCLIFlags returns health/stats HTTP server flags
func serverCLIFlags(c *config.Config) []cli.Flag {
	return withDefaults(serverCategoryDescription, []cli.Flag{
		&cli.StringFlag{
			Name:        "server_host",
			Value:       c.Server.Host,
			Usage:       "HTTP server host",
			Destination: &c.Server.Host,
		},

		&cli.IntFlag{
			Name:        "server_port",
			Value:       c.Server.Port,
			Usage:       "HTTP server port for health checks and stats (0 – disabled)",
			Destination: &c.Server.Port,
		},

		&cli.StringFlag{
			Name:        "health-path",
			Value:       c.Server.HealthPath,
			Usage:       "HTTP health endpoint path",
			Destination: &c.Server.HealthPath,
		},

		&cli.StringFlag{
			Name:        "stats-path",
			Value:       c.Server.StatsPath,
			Usage:       "HTTP internal stats endpoint path",
			Destination: &c.Server.StatsPath,
		},
	})
}

// miscCLIFlags returns uncategorized flags
func miscCLIFlags(c *config.Config, configPath *string, printConfig *bool, presets *string) []cli.Flag {
	return withDefaults(miscCategoryDescription, []cli.Flag{
		&cli.PathFlag{
			Name:        configPathFlag,
			Value:       c.ConfigFilePath,
			Usage:       "Path to the TOML configuration file",
			Destination: configPath,
		},

		&cli.BoolFlag{
			Name:        "print-config",
			Usage:       "Print the effective configuration in TOML format and exit",
			Destination: printConfig,
		},

		&cli.StringFlag{
			Name:        "presets",
			Usage:       "Configuration presets to apply, comma-separated (fly); detected automatically by default",
			Destination: presets,
		},
	})
}

// withDefaults sets category and env var name a flags passed as the arument
func withDefaults(category string, flags []cli.Flag) []cli.Flag {
	for _, f := range flags {
		switch v := f.(type) {
		case *cli.IntFlag:
			v.Category = category
			if len(v.EnvVars) == 0 {
				v.EnvVars = []string{nameToEnvVarName(v.Name)}
			}
		case *cli.Float64Flag:
			v.Category = category
			if len(v.EnvVars) == 0 {
				v.EnvVars = []string{nameToEnvVarName(v.Name)}
			}
		case *cli.DurationFlag:
			v.Category = category
			if len(v.EnvVars) == 0 {
				v.EnvVars = []string{nameToEnvVarName(v.Name)}
			}
		case *cli.BoolFlag:
			v.Category = category
			if len(v.EnvVars) == 0 {
				v.EnvVars = []string{nameToEnvVarName(v.Name)}
			}
		case *cli.StringFlag:
			v.Category = category
			if len(v.EnvVars) == 0 {
				v.EnvVars = []string{nameToEnvVarName(v.Name)}
			}
		case *cli.PathFlag:
			v.Category = category
			if len(v.EnvVars) == 0 {
				v.EnvVars = []string{nameToEnvVarName(v.Name)}
			}
		}
	}
	return flags
}

// nameToEnvVarName converts flag name to env variable
func nameToEnvVarName(name string) string {
	split := splitFlagName.Split(name, -1)
	set := []string{}

	for i := range split {
		set = append(set, strings.ToUpper(split[i]))
	}

	return envPrefix + strings.Join(set, "_")
}

// lookupConfigPath finds the config file path before flags are parsed,
// so the file values can serve as flag defaults
func lookupConfigPath(args []string) string {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")

		if !strings.HasPrefix(arg, "-") || name != configPathFlag {
			continue
		}

		if hasValue {
			return value
		}

		if i+1 < len(args) {
			return args[i+1]
		}
	}

	return os.Getenv(nameToEnvVarName(configPathFlag))
}

func parseTags(str string) (map[string]string, error) {
	tags := strings.Split(str, ",")

	res := make(map[string]string, len(tags))

	for _, v := range tags {
		key, value, ok := strings.Cut(v, ":")

		if !ok || key == "" {
			return nil, errorx.IllegalArgument.New("invalid tag format, expected 'key:value': %s", v)
		}

		res[key] = value
	}

	return res, nil
}
