package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/joomcode/errorx"
)

// HTTPConfig contains HTTP publisher settings
type HTTPConfig struct {
	URL string `toml:"url"`
	// Bearer token sent in the Authorization header
	Token string `toml:"token"`
	// Request timeout (seconds)
	Timeout int `toml:"timeout"`
}

func NewHTTPConfig() HTTPConfig {
	return HTTPConfig{Timeout: 5}
}

func (c HTTPConfig) Validate() error {
	if c.URL == "" {
		return errorx.IllegalArgument.New("http publisher requires a URL")
	}

	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return errorx.IllegalArgument.New("http publisher URL must start with http:// or https://, got %s", c.URL)
	}

	return nil
}

func (c HTTPConfig) ToToml() string {
	var result strings.Builder

	result.WriteString("# Endpoint to POST results to\n")
	if c.URL != "" {
		result.WriteString(fmt.Sprintf("http.url = \"%s\"\n", c.URL))
	} else {
		result.WriteString("# http.url = \"http://localhost:8080/results\"\n")
	}

	result.WriteString("# Bearer token\n")
	if c.Token != "" {
		result.WriteString(fmt.Sprintf("http.token = \"%s\"\n", c.Token))
	} else {
		result.WriteString("# http.token = \"secret\"\n")
	}

	result.WriteString("# Request timeout (seconds)\n")
	result.WriteString(fmt.Sprintf("http.timeout = %d\n", c.Timeout))

	result.WriteString("\n")

	return result.String()
}

// HTTPPublisher posts payloads to an HTTP endpoint
type HTTPPublisher struct {
	config      *HTTPConfig
	contentType string
	client      *resty.Client

	log *slog.Logger
}

var _ Publisher = (*HTTPPublisher)(nil)

func NewHTTPPublisher(c *HTTPConfig, contentType string, l *slog.Logger) *HTTPPublisher {
	return &HTTPPublisher{
		config:      c,
		contentType: contentType,
		log:         l.With("context", "publisher").With("publisher", "http"),
	}
}

func (HTTPPublisher) ID() string {
	return "http"
}

func (p *HTTPPublisher) Start(ctx context.Context) error {
	client := resty.New().
		SetTimeout(time.Duration(p.config.Timeout)*time.Second).
		SetHeader("Content-Type", p.contentType)

	if p.config.Token != "" {
		client.SetAuthToken(p.config.Token)
	}

	p.client = client

	p.log.Info(fmt.Sprintf("Publishing results to %s", p.config.URL))

	return nil
}

func (p *HTTPPublisher) Publish(ctx context.Context, payload []byte) error {
	if p.client == nil {
		return errorx.IllegalState.New("HTTP publisher is not started")
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(p.config.URL)

	if err != nil {
		return err
	}

	if resp.IsError() {
		return errorx.ExternalError.New("unexpected response status: %s", resp.Status())
	}

	return nil
}

func (p *HTTPPublisher) Shutdown(ctx context.Context) error {
	if p.client != nil {
		p.client.GetClient().CloseIdleConnections()
	}

	return nil
}
