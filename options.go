package solbind

import (
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/solbind/solbind/executor"
)

// Option configures a Load call.
type Option func(*config)

type config struct {
	worker   bool
	disabled []string
	patching bool
	logger   *zap.Logger
	http     *resty.Client
}

func defaultConfig() config {
	return config{patching: true, logger: zap.NewNop()}
}

// WithWorker runs the artifact inside an isolated worker goroutine instead
// of the caller's own.
func WithWorker() Option {
	return func(c *config) {
		c.worker = true
	}
}

// WithDisabledBindings excludes interface descriptors from resolution. A
// disabled descriptor is never selected, even when it is the only one the
// artifact exposes.
func WithDisabledBindings(names ...string) Option {
	return func(c *config) {
		c.disabled = append(c.disabled, names...)
	}
}

// WithoutPatching disables the source-level compatibility rewrites applied
// to known-buggy builds.
func WithoutPatching() Option {
	return func(c *config) {
		c.patching = false
	}
}

// WithLogger routes load diagnostics and artifact console output to the
// given logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithHTTPClient sets the client used to fetch locator-backed artifacts.
func WithHTTPClient(client *resty.Client) Option {
	return func(c *config) {
		c.http = client
	}
}

func (c config) executorConfig() executor.Config {
	return executor.Config{
		Disabled: c.disabled,
		Patching: c.patching,
		Logger:   c.logger,
		HTTP:     c.http,
	}
}
