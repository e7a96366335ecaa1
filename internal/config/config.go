package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/namsral/flag"
	log "github.com/sirupsen/logrus"
)

// Config stores all the config options relevant to the server.
type Config struct {
	General   General
	Listeners Listeners
	RateLimit RateLimit
	Server    Server
	Session   Session
	Log       Log
	Sentry    Sentry

	// Static lists the directories to serve, one static stage each, in the
	// order they were given.
	Static []StaticMount
}

// General groups settings that are general to the server and can not
// be categorized under other head.
type General struct {
	MaxConns       int
	MaxURILength   int
	MetricsAddress string
	StatusPath     string

	DisableCrossOriginRequests bool
	PropagateCorrelationID     bool
	UseH2C                     bool

	ShowVersion bool

	CustomHeaders []string
}

// Listeners groups the addresses to listen on
type Listeners struct {
	HTTP    []string
	Proxyv2 []string
}

// RateLimit config struct
type RateLimit struct {
	SourceIPLimitPerSecond float64
	SourceIPBurst          int
	Enforce                bool
}

// Server groups the settings of the HTTP server
type Server struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ListenKeepAlive   time.Duration
	ShutdownTimeout   time.Duration
}

// Session groups settings related to the cookie session. Sessions are
// disabled when Secret is empty.
type Session struct {
	Secret string
	Name   string
}

// Log groups settings related to configuring logging
type Log struct {
	Format  string
	Verbose bool
}

// Sentry groups settings related to configuring Sentry
type Sentry struct {
	DSN         string
	Environment string
}

// StaticMount maps the URL prefix URLRoot to the directory FSRoot.
type StaticMount struct {
	URLRoot string
	FSRoot  string
}

func (m StaticMount) String() string {
	return m.URLRoot + "=" + m.FSRoot
}

var errInvalidStaticMount = errors.New("static mount must be formatted as urlRoot=fsRoot")

// ParseStaticMount parses a urlRoot=fsRoot pair. Only the first "=" separates
// the two parts.
func ParseStaticMount(s string) (StaticMount, error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return StaticMount{}, fmt.Errorf("%q: %w", s, errInvalidStaticMount)
	}

	return StaticMount{
		URLRoot: strings.TrimSpace(parts[0]),
		FSRoot:  strings.TrimSpace(parts[1]),
	}, nil
}

func parseStaticMounts(values []string) ([]StaticMount, error) {
	mounts := make([]StaticMount, 0, len(values))

	for _, value := range values {
		mount, err := ParseStaticMount(value)
		if err != nil {
			return nil, err
		}

		mounts = append(mounts, mount)
	}

	return mounts, nil
}

func loadConfig() (*Config, error) {
	config := &Config{
		General: General{
			MaxConns:                   *maxConns,
			MaxURILength:               *maxURILength,
			MetricsAddress:             *metricsAddress,
			StatusPath:                 *statusPath,
			DisableCrossOriginRequests: *disableCrossOriginRequests,
			PropagateCorrelationID:     *propagateCorrelationID,
			UseH2C:                     *useH2C,
			CustomHeaders:              header.Split(),
			ShowVersion:                *showVersion,
		},
		Listeners: Listeners{
			HTTP:    listenHTTP.Split(),
			Proxyv2: listenProxyv2.Split(),
		},
		RateLimit: RateLimit{
			SourceIPLimitPerSecond: *rateLimitSourceIP,
			SourceIPBurst:          *rateLimitSourceIPBurst,
			Enforce:                *rateLimitEnforce,
		},
		Server: Server{
			ReadTimeout:       *serverReadTimeout,
			ReadHeaderTimeout: *serverReadHeaderTimeout,
			WriteTimeout:      *serverWriteTimeout,
			ListenKeepAlive:   *serverKeepAlive,
			ShutdownTimeout:   *serverShutdownTimeout,
		},
		Session: Session{
			Secret: *sessionSecret,
			Name:   *sessionName,
		},
		Log: Log{
			Format:  *logFormat,
			Verbose: *logVerbose,
		},
		Sentry: Sentry{
			DSN:         *sentryDSN,
			Environment: *sentryEnvironment,
		},
	}

	var err error
	if config.Static, err = parseStaticMounts(static.Split()); err != nil {
		return nil, err
	}

	// the version can be shown without a complete configuration
	if config.General.ShowVersion {
		return config, nil
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LogConfig logs the effective configuration at debug level. The session
// secret is never logged.
func LogConfig(config *Config) {
	log.WithFields(log.Fields{
		"default-config-filename":       flag.DefaultConfigFlagname,
		"disable-cross-origin-requests": config.General.DisableCrossOriginRequests,
		"header":                        config.General.CustomHeaders,
		"listen-http":                   config.Listeners.HTTP,
		"listen-proxyv2":                config.Listeners.Proxyv2,
		"log-format":                    config.Log.Format,
		"max-conns":                     config.General.MaxConns,
		"max-uri-length":                config.General.MaxURILength,
		"metrics-address":               config.General.MetricsAddress,
		"propagate-correlation-id":      config.General.PropagateCorrelationID,
		"rate-limit-source-ip":          config.RateLimit.SourceIPLimitPerSecond,
		"rate-limit-source-ip-burst":    config.RateLimit.SourceIPBurst,
		"rate-limit-enforce":            config.RateLimit.Enforce,
		"session-enabled":               config.Session.Secret != "",
		"session-name":                  config.Session.Name,
		"static":                        config.Static,
		"status-path":                   config.General.StatusPath,
		"use-h2c":                       config.General.UseH2C,
		"server-read-timeout":           config.Server.ReadTimeout,
		"server-read-header-timeout":    config.Server.ReadHeaderTimeout,
		"server-write-timeout":          config.Server.WriteTimeout,
		"server-keep-alive":             config.Server.ListenKeepAlive,
		"server-shutdown-timeout":       config.Server.ShutdownTimeout,
	}).Debug("Start daemon with configuration")
}

// LoadConfig parses configuration settings passed as command line arguments or
// via config file, and populates a Config object with those values
func LoadConfig() (*Config, error) {
	initFlags()

	return loadConfig()
}
