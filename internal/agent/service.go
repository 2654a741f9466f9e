package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/config"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/graph"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
)

// Service runs conversation turns through the agent graph.
//
// It is UI-agnostic; the CLI renders its results. A Service holds no
// per-run state, so concurrent runs are independent.
type Service struct {
	cfg      *config.Config
	registry *tools.Registry
	resolver *Resolver
	logger   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRegistry sets the tools exposed to the model. The registry must not
// change once runs start.
func WithRegistry(r *tools.Registry) Option {
	return func(s *Service) { s.registry = r }
}

// WithResolver replaces the default model resolver.
func WithResolver(r *Resolver) Option {
	return func(s *Service) { s.resolver = r }
}

// New creates an agent service.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = NewResolver(cfg, WithResolverLogger(s.logger))
	}
	return s
}

// Ask runs a single user prompt.
func (s *Service) Ask(ctx context.Context, prompt string, observers ...graph.Observer) (graph.Result, error) {
	return s.Run(ctx, proto.NewState(prompt), observers...)
}

// Run executes one turn: the model answers, calling tools as often as it
// asks to, until it replies without tool calls. The caller's state is not
// modified.
func (s *Service) Run(ctx context.Context, state proto.State, observers ...graph.Observer) (graph.Result, error) {
	if err := state.Validate(); err != nil {
		return graph.Result{}, errs.Wrap(err, "Invalid conversation.")
	}

	log := s.logger.With().
		Str("run_id", uuid.NewString()).
		Str("provider", s.cfg.Provider).
		Logger()

	model, err := s.resolver.Resolve(ctx, s.cfg.Provider)
	if err != nil {
		return graph.Result{}, err
	}

	system, err := SystemPrompt(ctx, s.cfg.SystemPrompt)
	if err != nil {
		return graph.Result{}, err
	}

	registry := s.registry
	if registry == nil {
		if registry, err = tools.NewRegistry(); err != nil {
			return graph.Result{}, err
		}
	}

	g, err := GraphBuilder{
		Model:        model,
		Registry:     registry,
		SystemPrompt: system,
		MaxSteps:     s.cfg.MaxSteps,
		Logger:       log,
	}.Build()
	if err != nil {
		return graph.Result{}, fmt.Errorf("build agent graph: %w", err)
	}

	trace := func(e graph.Event) {
		log.Debug().Int("step", e.Step).Str("node", e.Node).Int("messages", len(e.State.Messages)).Msg("visit")
	}

	start := time.Now()
	log.Info().Int("messages", len(state.Messages)).Int("tools", registry.Len()).Msg("run started")
	res, err := g.Invoke(ctx, state, append([]graph.Observer{trace}, observers...)...)
	if err != nil {
		log.Error().Err(err).Strs("path", res.Path).Msg("run failed")
		return res, err
	}
	log.Info().Strs("path", res.Path).Dur("took", time.Since(start)).Msg("run finished")
	log.Debug().Str("transcript", proto.Conversation(res.State.Messages).String()).Msg("final conversation")
	return res, nil
}

// BuildRegistry returns a registry holding the built-in tools named in the
// tools setting.
func BuildRegistry(cfg *config.Config) (*tools.Registry, error) {
	reg, err := tools.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, name := range cfg.Tools {
		tool, err := tools.Builtin(name)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(tool); err != nil {
			return nil, errs.Configuration(err, "Could not register tool %q.", name)
		}
	}
	return reg, nil
}
