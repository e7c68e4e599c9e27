package publisher

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nconfig "github.com/statsbridge/statsbridge/nats"
	rconfig "github.com/statsbridge/statsbridge/redis"
)

func TestConfig_Validate(t *testing.T) {
	conf := NewConfig()
	require.NoError(t, conf.Validate())

	for _, name := range Adapters() {
		conf.Adapter = name
		assert.NoError(t, conf.Validate())
	}

	conf.Adapter = "kafka"
	assert.Error(t, conf.Validate())
}

func TestConfig_ToToml(t *testing.T) {
	conf := NewConfig()
	conf.Adapter = "http"
	conf.HTTP.URL = "http://localhost:8080/results"
	conf.HTTP.Token = "secret"
	conf.HTTP.Timeout = 10

	tomlStr := conf.ToToml()

	assert.Contains(t, tomlStr, "adapter = \"http\"")
		assert.Contains(t, tomlStr, "http.url = \"http://localhost:8080/results\"")
	assert.Contains(t, tomlStr, "http.token = \"secret\"")
	assert.Contains(t, tomlStr, "http.timeout = 10")

	// Round-trip test
	conf2 := NewConfig()

	_, err := toml.Decode(tomlStr, &conf2)
	require.NoError(t, err)

	assert.Equal(t, conf, conf2)
}

func TestFromConfig(t *testing.T) {
	nc := nconfig.NewNATSConfig()
	rc := rconfig.NewRedisConfig()

	build := func(c Config) (Publisher, error) {
		return FromConfig(&c, &nc, &rc, "application/json", slog.Default())
	}

	conf := NewConfig()

	p, err := build(conf)
	require.NoError(t, err)
	assert.IsType(t, &LogPublisher{}, p)

	conf.Adapter = "nats"
	p, err = build(conf)
	require.NoError(t, err)
	assert.Equal(t, "nats", p.ID())

	conf.Adapter = "redis"
	p, err = build(conf)
	require.NoError(t, err)
	assert.Equal(t, "redis", p.ID())

	conf.Adapter = "http"
	_, err = build(conf)
	assert.Error(t, err, "http publisher without URL")

	conf.HTTP.URL = "http://localhost:8080"
	p, err = build(conf)
	require.NoError(t, err)
	assert.Equal(t, "http", p.ID())

	conf.Adapter = "unknown"
	_, err = build(conf)
	assert.Error(t, err)
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(slog.Default())

	require.NoError(t, p.Start(context.Background()))
	assert.NoError(t, p.Publish(context.Background(), []byte("{}")))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()

	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Publish(context.Background(), []byte("first")))
	require.NoError(t, p.Publish(context.Background(), []byte("second")))

	assert.Equal(t, [][]byte{[]byte("first"), []byte("second")}, p.Published())
	assert.Equal(t, "first", string(<-p.Payloads()))
	assert.Equal(t, "second", string(<-p.Payloads()))
}

func TestMemoryPublisher_concurrentUse(t *testing.T) {
	var pub Publisher = NewMemoryPublisher()

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			assert.Equal(t, "memory", pub.ID())
			assert.NoError(t, pub.Publish(context.Background(), []byte("payload")))
		}()
	}

	wg.Wait()

	require.NoError(t, pub.Shutdown(context.Background()))
	assert.Len(t, pub.(*MemoryPublisher).Published(), 10)
}
