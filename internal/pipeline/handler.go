package pipeline

import (
	"net/http"

	"gitlab.com/gitlab-org/static-pipeline/metrics"
)

// Fallback answers a request that went through the whole chain without any
// stage terminating it.
type Fallback[C any] func(x Exchange[C])

// NotFound is the default Fallback.
func NotFound[C any](x Exchange[C]) {
	http.NotFound(x.Response, x.Request)
}

// Handler runs chain for every request served. newContext creates the fresh
// context value of each request. fallback is called with the final exchange
// when every stage continued; nil means NotFound. The response is closed
// once the request has been handled.
func Handler[C any](chain Chain[C], newContext func(*http.Request) C, fallback Fallback[C]) http.Handler {
	if newContext == nil {
		newContext = func(*http.Request) C {
			var zero C
			return zero
		}
	}

	if fallback == nil {
		fallback = NotFound[C]
	}

	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		w := NewResponse(rw)

		x, ok := chain.Run(r, w, newContext(r))
		if !ok {
			metrics.ChainOutcomes.WithLabelValues("terminated").Inc()
			return
		}

		metrics.ChainOutcomes.WithLabelValues("completed").Inc()

		fallback(x)
		x.Response.Close()
	})
}
