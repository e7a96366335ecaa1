package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	labmetrics "gitlab.com/gitlab-org/labkit/metrics"

	"gitlab.com/gitlab-org/static-pipeline/internal/config"
	"gitlab.com/gitlab-org/static-pipeline/internal/customheaders"
	"gitlab.com/gitlab-org/static-pipeline/internal/handlers"
	"gitlab.com/gitlab-org/static-pipeline/internal/healthcheck"
	"gitlab.com/gitlab-org/static-pipeline/internal/httperrors"
	"gitlab.com/gitlab-org/static-pipeline/internal/logging"
	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
	"gitlab.com/gitlab-org/static-pipeline/internal/ratelimiter"
	"gitlab.com/gitlab-org/static-pipeline/internal/rejectmethods"
	"gitlab.com/gitlab-org/static-pipeline/internal/session"
	"gitlab.com/gitlab-org/static-pipeline/internal/static"
	"gitlab.com/gitlab-org/static-pipeline/internal/urilimiter"
)

var httpMetrics = labmetrics.NewHandlerFactory(labmetrics.WithNamespace("static_pipeline"))

// pageContext is the value threaded through the chain of every request.
type pageContext struct {
	CorrelationID string
	// Trail lists the stages the request went through, in order.
	Trail   []string
	Session *sessions.Session
}

func newPageContext(r *http.Request) pageContext {
	return pageContext{CorrelationID: correlation.ExtractFromContext(r.Context())}
}

func (c pageContext) visit(name string) pageContext {
	trail := make([]string, len(c.Trail), len(c.Trail)+1)
	copy(trail, c.Trail)
	c.Trail = append(trail, name)

	return c
}

func withSession(c pageContext, s *sessions.Session) pageContext {
	c.Session = s
	return c
}

// traced records name in the trail before handing the request to stage.
func traced(name string, stage pipeline.Stage[pageContext]) pipeline.Stage[pageContext] {
	if stage == nil {
		return nil
	}

	return pipeline.StageFunc[pageContext](func(r *http.Request, w *pipeline.Response, ctx pageContext) pipeline.Outcome[pageContext] {
		return stage.Process(r, w, ctx.visit(name))
	})
}

type theApp struct {
	config *config.Config
}

func (a *theApp) rateLimitStage() pipeline.Stage[pageContext] {
	if a.config.RateLimit.SourceIPLimitPerSecond == 0 {
		return nil
	}

	rl := ratelimiter.New(
		ratelimiter.WithSourceIPLimitPerSecond(a.config.RateLimit.SourceIPLimitPerSecond),
		ratelimiter.WithSourceIPBurstSize(a.config.RateLimit.SourceIPBurst),
		ratelimiter.WithEnforce(a.config.RateLimit.Enforce),
	)

	return ratelimiter.NewStage[pageContext](rl)
}

func (a *theApp) sessionStage() (pipeline.Stage[pageContext], error) {
	if a.config.Session.Secret == "" {
		return nil, nil
	}

	store, err := session.NewStore(a.config.Session.Secret, a.config.Session.Name)
	if err != nil {
		return nil, err
	}

	return session.NewStage(store, withSession), nil
}

func (a *theApp) staticStages() ([]pipeline.Stage[pageContext], error) {
	stages := make([]pipeline.Stage[pageContext], 0, len(a.config.Static))

	for _, mount := range a.config.Static {
		h, err := static.New(mount.URLRoot, mount.FSRoot)
		if err != nil {
			return nil, fmt.Errorf("static mount %s: %w", mount, err)
		}

		log.WithFields(log.Fields{
			"url_root": mount.URLRoot,
			"fs_root":  h.FSRoot(),
		}).Info("Serving static files")

		stages = append(stages, traced("static:"+mount.URLRoot, static.Stage[pageContext](h)))
	}

	return stages, nil
}

// buildChain assembles the stages enabled by the configuration. Static
// mounts come last, in the order they were configured.
func (a *theApp) buildChain() (pipeline.Chain[pageContext], error) {
	headers, err := config.ParseHeaderString(a.config.General.CustomHeaders)
	if err != nil {
		return pipeline.Chain[pageContext]{}, err
	}

	sessionStage, err := a.sessionStage()
	if err != nil {
		return pipeline.Chain[pageContext]{}, err
	}

	statics, err := a.staticStages()
	if err != nil {
		return pipeline.Chain[pageContext]{}, err
	}

	chain := pipeline.New(
		traced("logger", logging.Stage[pageContext]()),
		traced("headers", customheaders.NewStage[pageContext](headers)),
		traced("rejectmethods", rejectmethods.NewStage[pageContext]()),
		traced("healthcheck", healthcheck.NewStage[pageContext](a.config.General.StatusPath)),
		traced("urilimiter", urilimiter.NewStage[pageContext](a.config.General.MaxURILength)),
		traced("ratelimiter", a.rateLimitStage()),
		traced("cors", handlers.CorsStage[pageContext](a.config.General.DisableCrossOriginRequests)),
		traced("session", sessionStage),
	)

	return chain.With(statics...), nil
}

// notFound answers requests no stage terminated.
func notFound(x pipeline.Exchange[pageContext]) {
	logging.LogRequest(x.Request).
		WithField("trail", strings.Join(x.Context.Trail, ",")).
		Debug("no stage answered the request")

	httperrors.Serve404(x.Response)
}

// buildHandler wraps the chain into the HTTP middlewares shared by every
// listener.
func (a *theApp) buildHandler() (http.Handler, error) {
	chain, err := a.buildChain()
	if err != nil {
		return nil, err
	}

	log.WithField("stages", chain.Len()).Debug("Built request chain")

	handler := pipeline.Handler(chain, newPageContext, notFound)
	handler = ghandlers.RecoveryHandler(
		ghandlers.RecoveryLogger(log.StandardLogger()),
		ghandlers.PrintRecoveryStack(true),
	)(handler)

	handler, err = logging.BasicAccessLogger(handler, a.config.Log.Format, nil)
	if err != nil {
		return nil, err
	}

	handler = httpMetrics(handler)

	correlationOpts := []correlation.InboundHandlerOption{
		correlation.WithSetResponseHeader(),
	}
	if a.config.General.PropagateCorrelationID {
		correlationOpts = append(correlationOpts, correlation.WithPropagation())
	}

	return correlation.InjectCorrelationID(handler, correlationOpts...), nil
}

func runApp(ctx context.Context, cfg *config.Config) error {
	a := &theApp{config: cfg}

	handler, err := a.buildHandler()
	if err != nil {
		return err
	}

	listeners, err := a.listen(ctx)
	if err != nil {
		return err
	}

	metricsListener, err := a.listenMetrics(ctx)
	if err != nil {
		closeAll(listeners)
		return err
	}

	return a.serve(ctx, handler, listeners, metricsListener)
}
