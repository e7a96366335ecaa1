package ratelimiter

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	"gitlab.com/gitlab-org/labkit/log"

	"gitlab.com/gitlab-org/static-pipeline/internal/httperrors"
	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
	"gitlab.com/gitlab-org/static-pipeline/internal/request"
)

const headerXForwardedFor = "X-Forwarded-For"

// NewStage returns a stage rate-limiting clients based on their IP. Blocked
// requests get a 429 when rl enforces its limits and continue otherwise.
func NewStage[C any](rl *RateLimiter) pipeline.Stage[C] {
	return pipeline.StageFunc[C](func(r *http.Request, w *pipeline.Response, ctx C) pipeline.Outcome[C] {
		sourceIP := request.GetRemoteAddrWithoutPort(r)
		if rl.SourceIPAllowed(sourceIP) {
			return pipeline.Continue(r, w, ctx)
		}

		rl.logSourceIP(r, sourceIP)
		rl.blocked.WithLabelValues(strconv.FormatBool(rl.enforce)).Inc()

		if !rl.enforce {
			return pipeline.Continue(r, w, ctx)
		}

		httperrors.Serve429(w)
		return pipeline.Terminate[C]()
	})
}

func (rl *RateLimiter) logSourceIP(r *http.Request, sourceIP string) {
	log.WithFields(logrus.Fields{
		"handler":                       "source_ip_rate_limiter",
		"correlation_id":                correlation.ExtractFromContext(r.Context()),
		"req_host":                      r.Host,
		"req_path":                      r.URL.Path,
		"remote_addr":                   r.RemoteAddr,
		"source_ip":                     sourceIP,
		"x_forwarded_for":               r.Header.Get(headerXForwardedFor),
		"rate_limiter_enforced":         rl.enforce,
		"rate_limiter_limit_per_second": float64(rl.limit),
		"rate_limiter_burst_size":       rl.burst,
	}).Info("source IP hit rate limit")
}
