// Package logging configures the process logger and the HTTP access log.
package logging

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	"gitlab.com/gitlab-org/labkit/log"

	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
	"gitlab.com/gitlab-org/static-pipeline/internal/request"
)

const defaultFormat = "json"

var errUnknownFormat = errors.New("unknown log format")

func level(verbose bool) string {
	if verbose {
		return "trace"
	}

	return "info"
}

// ConfigureLogging sets up the standard logger. format is json or text,
// json when empty.
func ConfigureLogging(format string, verbose bool) error {
	if format == "" {
		format = defaultFormat
	}

	if format != "json" && format != "text" {
		return fmt.Errorf("%q: %w", format, errUnknownFormat)
	}

	_, err := log.Initialize(
		log.WithFormatter(format),
		log.WithLogLevel(level(verbose)),
	)

	return err
}

// getAccessLogger returns the standard logger, unless format is text: access
// lines then go through a dedicated logger using the combined format.
func getAccessLogger(format string) (*logrus.Logger, error) {
	if format != "text" {
		return logrus.StandardLogger(), nil
	}

	combined := log.New()
	if _, err := log.Initialize(log.WithLogger(combined), log.WithFormatter("combined")); err != nil {
		return nil, err
	}

	return combined, nil
}

// BasicAccessLogger logs one line per request served by handler. The
// fields returned by extraFields, if any, are added to every line.
func BasicAccessLogger(handler http.Handler, format string, extraFields log.ExtraFieldsGeneratorFunc) (http.Handler, error) {
	accessLogger, err := getAccessLogger(format)
	if err != nil {
		return nil, err
	}

	fields := func(r *http.Request) log.Fields {
		f := log.Fields{
			"correlation_id": correlation.ExtractFromContext(r.Context()),
			"req_host":       request.GetHostWithoutPort(r),
		}

		if extraFields != nil {
			for k, v := range extraFields(r) {
				f[k] = v
			}
		}

		return f
	}

	return log.AccessLogger(handler,
		log.WithAccessLogger(accessLogger),
		log.WithExtraFields(fields),
		log.WithXFFAllowed(func(string) bool { return false }),
	), nil
}

// LogRequest returns an entry carrying the correlation ID, host and path of r.
func LogRequest(r *http.Request) *logrus.Entry {
	return log.WithFields(log.Fields{
		"correlation_id": correlation.ExtractFromContext(r.Context()),
		"host":           r.Host,
		"path":           r.URL.Path,
	})
}

// Stage returns a stage that logs every request going through it at debug
// level and continues.
func Stage[C any]() pipeline.Stage[C] {
	return pipeline.StageFunc[C](func(r *http.Request, w *pipeline.Response, ctx C) pipeline.Outcome[C] {
		LogRequest(r).WithFields(log.Fields{
			"method": r.Method,
			"uri":    r.RequestURI,
		}).Debug("request")

		return pipeline.Continue(r, w, ctx)
	})
}
