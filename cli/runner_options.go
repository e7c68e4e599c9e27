package cli

import (
	"log/slog"

	"github.com/joomcode/errorx"

	"github.com/statsbridge/statsbridge/config"
	"github.com/statsbridge/statsbridge/publisher"
)

// Option represents a Runner configuration function
type Option func(*Runner) error

// WithName is an Option to set Runner name
func WithName(name string) Option {
	return func(r *Runner) error {
		r.name = name
		return nil
	}
}

// WithPublisher is an Option to set a custom publisher factory
func WithPublisher(fn publisherFactory) Option {
	return func(r *Runner) error {
		if r.publisherFactory != nil {
			return errorx.IllegalArgument.New("Publisher has been already assigned")
		}
		r.publisherFactory = fn
		return nil
	}
}

// WithDefaultPublisher is an Option to set Runner publisher to the one from config
func WithDefaultPublisher() Option {
	return WithPublisher(defaultPublisherFactory)
}

// WithPublisherInstance is an Option to use the provided publisher as is
func WithPublisherInstance(p publisher.Publisher) Option {
	return WithPublisher(func(c *config.Config, contentType string, l *slog.Logger) (publisher.Publisher, error) {
		return p, nil
	})
}

// WithShutdownable adds a new shutdownable instance to be shutdown at server stop
func WithShutdownable(instance Shutdownable) Option {
	return func(r *Runner) error {
		r.shutdownables = append(r.shutdownables, instance)
		return nil
	}
}
