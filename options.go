package nats

import (
	"time"

	jsoncodec "github.com/wolfkor/natscore/encoders/json"
)

const (
	// DefaultInboxPrefix roots every per-connection reply subject.
	DefaultInboxPrefix = "_INBOX."

	defaultConnectTimeout  = 2 * time.Second
	defaultPingInterval    = 2 * time.Minute
	defaultMaxPingsOut     = 2
	defaultReconnectWait   = 2 * time.Second
	defaultReconnectJitter = time.Second
	defaultCommandPoolSize = 256
	defaultHighWaterMark   = 32 * 1024
	defaultDrainTimeout    = 5 * time.Second
)

// Options configures a Connection. Construct with NewOptions and
// functional With* options, matching the pattern the teacher's own
// JetStream option surface uses.
type Options struct {
	SeedURLs []string

	ConnectTimeout  time.Duration
	PingInterval    time.Duration
	MaxPingsOut     int
	ReconnectWait   time.Duration
	ReconnectJitter time.Duration
	NoRandomize     bool
	CommandPoolSize int
	InboxPrefix     string
	HighWaterMark   int
	DrainTimeout    time.Duration

	Serializer Serializer
	Auth       AuthMethod

	TLSMode    TLSMode
	TLSOptions TLSOptions

	Logger Logger
}

// Option mutates Options during construction; an error aborts NewOptions.
type Option func(*Options) error

// DefaultOptions returns the zero-value-safe baseline every NewOptions
// call starts from.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:  defaultConnectTimeout,
		PingInterval:    defaultPingInterval,
		MaxPingsOut:     defaultMaxPingsOut,
		ReconnectWait:   defaultReconnectWait,
		ReconnectJitter: defaultReconnectJitter,
		CommandPoolSize: defaultCommandPoolSize,
		InboxPrefix:     DefaultInboxPrefix,
		HighWaterMark:   defaultHighWaterMark,
		DrainTimeout:    defaultDrainTimeout,
		TLSMode:         TLSAuto,
		Logger:          nopLoggerInstance,
	}
}

// NewOptions builds an Options from seedURLs plus any functional options,
// validating the result.
func NewOptions(seedURLs []string, opts ...Option) (*Options, error) {
	o := DefaultOptions()
	o.SeedURLs = seedURLs
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if len(o.SeedURLs) == 0 {
		return nil, ErrNoServers
	}
	if err := o.Auth.Validate(); err != nil {
		return nil, err
	}
	if o.Serializer == nil {
		o.Serializer = jsoncodec.Codec{}
	}
	if o.Logger == nil {
		o.Logger = nopLoggerInstance
	}
	return &o, nil
}

func WithConnectTimeout(d time.Duration) Option {
	return func(o *Options) error { o.ConnectTimeout = d; return nil }
}

func WithPingInterval(d time.Duration) Option {
	return func(o *Options) error { o.PingInterval = d; return nil }
}

func WithMaxPingsOut(n int) Option {
	return func(o *Options) error { o.MaxPingsOut = n; return nil }
}

func WithReconnectWait(d time.Duration) Option {
	return func(o *Options) error { o.ReconnectWait = d; return nil }
}

func WithReconnectJitter(d time.Duration) Option {
	return func(o *Options) error { o.ReconnectJitter = d; return nil }
}

func WithNoRandomize() Option {
	return func(o *Options) error { o.NoRandomize = true; return nil }
}

func WithCommandPoolSize(n int) Option {
	return func(o *Options) error { o.CommandPoolSize = n; return nil }
}

func WithInboxPrefix(prefix string) Option {
	return func(o *Options) error { o.InboxPrefix = prefix; return nil }
}

func WithSerializer(s Serializer) Option {
	return func(o *Options) error { o.Serializer = s; return nil }
}

func WithAuth(a AuthMethod) Option {
	return func(o *Options) error { o.Auth = a; return nil }
}

func WithTLSMode(mode TLSMode) Option {
	return func(o *Options) error { o.TLSMode = mode; return nil }
}

func WithTLSOptions(t TLSOptions) Option {
	return func(o *Options) error { o.TLSOptions = t; return nil }
}

func WithLogger(l Logger) Option {
	return func(o *Options) error { o.Logger = l; return nil }
}
