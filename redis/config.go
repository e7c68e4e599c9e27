package redis

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joomcode/errorx"
	"github.com/redis/rueidis"
)

const (
	// ModeChannel publishes results via PUBLISH
	ModeChannel = "channel"
	// ModeList appends results to a list via RPUSH
	ModeList = "list"
)

// RedisConfig contains Redis publisher configuration
type RedisConfig struct {
	// Redis instance URL or master name in case of sentinels usage
	// or list of URLs if cluster usage
	URL string `toml:"url"`
	// Channel (or list key) name to publish results to
	Channel string `toml:"channel"`
	// Publishing mode: channel or list
	Mode string `toml:"mode"`
	// List of Redis Sentinel addresses
	Sentinels string `toml:"sentinels"`
	// Redis keepalive ping interval (seconds)
	KeepalivePingInterval int `toml:"keepalive_ping_interval"`
	// Whether to check server's certificate for validity (in case of rediss:// protocol)
	TLSVerify bool `toml:"tls_verify"`
}

// NewRedisConfig builds a new config for the Redis publisher
func NewRedisConfig() RedisConfig {
	return RedisConfig{
		KeepalivePingInterval: 30,
		URL:                   "redis://localhost:6379",
		Channel:               "results",
		Mode:                  ModeChannel,
		TLSVerify:             false,
	}
}

func (config *RedisConfig) IsSentinel() bool {
	return config.Sentinels != ""
}

func (config *RedisConfig) Validate() error {
	if config.Mode != ModeChannel && config.Mode != ModeList {
		return errorx.IllegalArgument.New("unknown redis mode: %s (supported: channel, list)", config.Mode)
	}

	if config.Channel == "" {
		return errorx.IllegalArgument.New("redis channel must not be empty")
	}

	return nil
}

func (config *RedisConfig) ToRueidisOptions() (options *rueidis.ClientOption, err error) {
	if config.IsSentinel() {
		options, err = config.parseSentinels()
	} else {
		options, err = parseRedisURL(config.URL)
	}

	if err != nil {
		return nil, err
	}

	options.Dialer.KeepAlive = time.Duration(config.KeepalivePingInterval) * time.Second

	options.ShuffleInit = !config.IsSentinel() && len(options.InitAddress) > 1

	if options.TLSConfig != nil {
		options.TLSConfig.InsecureSkipVerify = !config.TLSVerify
	}

	// publish-only client, no reads to cache
	options.DisableCache = true

	return options, nil
}

func (config *RedisConfig) parseSentinels() (*rueidis.ClientOption, error) {
	sentinelMaster, err := url.Parse(config.URL)

	if err != nil {
		return nil, err
	}

	options, err := parseRedisURL(config.Sentinels)

	if err != nil {
		return nil, err
	}

	options.Sentinel.MasterSet = sentinelMaster.Host

	return options, nil
}

func (config *RedisConfig) ToToml() string {
	var result strings.Builder

	result.WriteString("# Redis instance URL or master name in case of sentinels usage\n")
	result.WriteString("# or list of URLs if cluster usage\n")
	result.WriteString(fmt.Sprintf("url = \"%s\"\n", config.URL))

	result.WriteString("# Channel (or list key) to publish results to\n")
	result.WriteString(fmt.Sprintf("channel = \"%s\"\n", config.Channel))

	result.WriteString("# Publishing mode (channel: PUBLISH, list: RPUSH)\n")
	result.WriteString(fmt.Sprintf("mode = \"%s\"\n", config.Mode))

	result.WriteString("# Sentinel addresses (comma-separated list)\n")
	if config.Sentinels != "" {
		result.WriteString(fmt.Sprintf("sentinels = \"%s\"\n", config.Sentinels))
	} else {
		result.WriteString("# sentinels = \"localhost:26379\"\n")
	}

	result.WriteString("# Keepalive ping interval (seconds)\n")
	result.WriteString(fmt.Sprintf("keepalive_ping_interval = %d\n", config.KeepalivePingInterval))

	result.WriteString("# Enable TLS Verify\n")
	if config.TLSVerify {
		result.WriteString(fmt.Sprintf("tls_verify = %t\n", config.TLSVerify))
	} else {
		result.WriteString("# tls_verify = true\n")
	}

	result.WriteString("\n")

	return result.String()
}

func parseRedisURL(url string) (options *rueidis.ClientOption, err error) {
	urls := strings.Split(url, ",")

	for _, addr := range urls {
		addr = chompTrailingSlashHostname(addr)

		currentOptions, err := rueidis.ParseURL(ensureRedisScheme(addr))

		if err != nil {
			return nil, err
		}

		if options == nil {
			options = &currentOptions
		} else {
			options.InitAddress = append(options.InitAddress, currentOptions.InitAddress...)
		}
	}

	return options, nil
}

// rueidis URL parsing doesn't tolerate trailing slash hostnames (redis-cli does)
func chompTrailingSlashHostname(url string) string {
	return strings.TrimSuffix(url, "/")
}

func ensureRedisScheme(url string) string {
	if strings.Contains(url, "://") {
		return url
	}

	return "redis://" + url
}
