package metrics

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/joomcode/errorx"
	"github.com/smira/go-statsd"
)

type StatsdConfig struct {
	Host          string            `toml:"host"`
	Prefix        string            `toml:"prefix"`
	TagFormat     string            `toml:"tags_format"`
	MaxPacketSize int               `toml:"max_packet_size"`
	Tags          map[string]string `toml:"tags"`
}

type StatsdLogger struct {
	log *slog.Logger
}

func (lg *StatsdLogger) Printf(msg string, args ...interface{}) {
	msg = strings.TrimPrefix(msg, "[STATSD] ")
	// Statsd only prints errors and warnings
	if strings.Contains(msg, "Error") {
		lg.log.Error(fmt.Sprintf(msg, args...))
	} else {
		lg.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func NewStatsdConfig() StatsdConfig {
	return StatsdConfig{Prefix: "statsbridge.", MaxPacketSize: 1400, TagFormat: "datadog"}
}

func (c StatsdConfig) Enabled() bool {
	return c.Host != ""
}

// StatsdWriter reports internal metrics to a statsd server
// (which can be this very service, making it self-monitored)
type StatsdWriter struct {
	client *statsd.Client
	config StatsdConfig

	log *slog.Logger
	mu  sync.Mutex
}

var _ IntervalWriter = (*StatsdWriter)(nil)

func NewStatsdWriter(c StatsdConfig, l *slog.Logger) *StatsdWriter {
	return &StatsdWriter{config: c, log: l.With("context", "metrics").With("writer", "statsd")}
}

func (sw *StatsdWriter) Run(interval int) error {
	sl := StatsdLogger{sw.log}
	opts := []statsd.Option{
		statsd.MaxPacketSize(sw.config.MaxPacketSize),
		statsd.MetricPrefix(sw.config.Prefix),
		statsd.Logger(&sl),
	}

	var tagsInfo string

	if len(sw.config.Tags) > 0 {
		tagsStyle, err := resolveTagsStyle(sw.config.TagFormat)
		if err != nil {
			return err
		}

		opts = append(opts,
			statsd.TagStyle(tagsStyle),
			statsd.DefaultTags(convertTags(sw.config.Tags)...),
		)

		tagsInfo = fmt.Sprintf(", tags=%v, style=%s", sw.config.Tags, sw.config.TagFormat)
	}

	sw.mu.Lock()
	sw.client = statsd.NewClient(sw.config.Host, opts...)
	sw.mu.Unlock()

	sw.log.Info(
		fmt.Sprintf(
			"Send statsd metrics to %s with every %vs (prefix=%s%s)",
			sw.config.Host, interval, sw.config.Prefix, tagsInfo,
		),
	)

	return nil
}

func (sw *StatsdWriter) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.client == nil {
		return
	}

	sw.client.Close() // nolint:errcheck
	sw.client = nil
}

func (sw *StatsdWriter) Write(m *Metrics) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.client == nil {
		return nil
	}

	m.EachCounter(func(counter *Counter) {
		sw.client.Incr(counter.Name(), int64(counter.IntervalValue()))
	})

	m.EachGauge(func(gauge *Gauge) {
		sw.client.Gauge(gauge.Name(), int64(gauge.Value()))
	})

	return nil
}

func resolveTagsStyle(name string) (*statsd.TagFormat, error) {
	switch name {
	case "datadog":
		return statsd.TagFormatDatadog, nil
	case "influxdb":
		return statsd.TagFormatInfluxDB, nil
	case "graphite":
		return statsd.TagFormatGraphite, nil
	}

	return nil, errorx.IllegalArgument.New("unknown StatsD tags format: %s", name)
}

func convertTags(tags map[string]string) []statsd.Tag {
	buf := make([]statsd.Tag, 0, len(tags))

	for k, v := range tags {
		buf = append(buf, statsd.StringTag(k, v))
	}

	return buf
}
