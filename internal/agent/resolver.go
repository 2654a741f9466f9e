package agent

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/caarlos0/go-shellwords"
	"github.com/rs/zerolog"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/config"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/llm"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
)

// ChatModel answers a conversation, optionally requesting tool calls.
type ChatModel interface {
	Send(ctx context.Context, messages []proto.Message, specs []tools.Spec) (proto.Message, error)
}

// ClientFactory builds a ChatModel from a resolved model configuration.
type ClientFactory func(llm.Config) (ChatModel, error)

// NewLLMClient is the default ClientFactory.
func NewLLMClient(cfg llm.Config) (ChatModel, error) {
	m, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}

var keyDocs = map[string]string{
	llm.ProviderGroq:   "https://console.groq.com/keys",
	llm.ProviderOpenAI: "https://platform.openai.com/account/api-keys",
}

// Resolver turns a provider name into a ready ChatModel.
type Resolver struct {
	cfg     *config.Config
	getenv  func(string) string
	factory ClientFactory
	logger  zerolog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGetenv replaces os.Getenv for credential lookup.
func WithGetenv(fn func(string) string) ResolverOption {
	return func(r *Resolver) { r.getenv = fn }
}

// WithClientFactory replaces the factory that builds model handles.
func WithClientFactory(fn ClientFactory) ResolverOption {
	return func(r *Resolver) { r.factory = fn }
}

// WithResolverLogger sets the logger handed to model handles.
func WithResolverLogger(l zerolog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver returns a resolver reading settings from cfg.
func NewResolver(cfg *config.Config, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cfg:     cfg,
		getenv:  os.Getenv,
		factory: NewLLMClient,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve builds a fresh model handle for provider.
func (r *Resolver) Resolve(ctx context.Context, provider string) (ChatModel, error) {
	cfg, err := r.ModelConfig(ctx, provider)
	if err != nil {
		return nil, err
	}
	client, err := r.factory(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ModelConfig validates provider settings and looks up the credential.
func (r *Resolver) ModelConfig(ctx context.Context, provider string) (llm.Config, error) {
	settings, ok := r.cfg.LLM.For(provider)
	if !ok {
		return llm.Config{}, errs.Configuration(
			errs.UserErrorf("Supported providers are: %s", strings.Join(llm.Providers(), ", ")),
			"Unsupported provider %q.", provider,
		)
	}

	model := r.cfg.ModelName(provider)
	if model == "" {
		return llm.Config{}, config.MissingModelError(provider, r.cfg.SettingsPath)
	}

	key, err := r.ensureKey(ctx, provider, settings)
	if err != nil {
		return llm.Config{}, err
	}

	logger := r.logger.With().Str("provider", provider).Str("model", model).Logger()
	cfg := llm.Config{
		Provider: provider,
		Model:    model,
		APIKey:   key,
		BaseURL:  settings.BaseURL,
		User:     r.cfg.User,
		Logger:   &logger,
	}
	if r.cfg.Temperature >= 0 {
		v := r.cfg.Temperature
		cfg.Temperature = &v
	}
	if r.cfg.MaxTokens > 0 {
		v := r.cfg.MaxTokens
		cfg.MaxTokens = &v
	}
	if err := ApplyProxyConfig(r.cfg.HTTPProxy, &cfg); err != nil {
		return llm.Config{}, err
	}
	return cfg, nil
}

// DefaultKeyEnv returns the conventional credential variable for provider.
func DefaultKeyEnv(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

func (r *Resolver) ensureKey(ctx context.Context, provider string, ps config.ProviderSettings) (string, error) {
	defaultEnv := DefaultKeyEnv(provider)

	key := ps.APIKey
	if key == "" && ps.APIKeyEnv != "" && ps.APIKeyCmd == "" {
		key = r.getenv(ps.APIKeyEnv)
	}
	if key == "" && ps.APIKeyCmd != "" {
		args, err := shellwords.Parse(ps.APIKeyCmd)
		if err != nil {
			return "", errs.Authentication(err, "Failed to parse api-key-cmd.")
		}
		if len(args) == 0 {
			return "", errs.Authentication(nil, "api-key-cmd is empty.")
		}
		// #nosec G204 -- api-key-cmd is explicitly configured by the local user.
		out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
		if err != nil {
			return "", errs.Authentication(err, "Cannot exec api-key-cmd.")
		}
		key = strings.TrimSpace(string(out))
	}
	if key == "" {
		key = r.getenv(defaultEnv)
	}
	if key != "" {
		return key, nil
	}
	return "", errs.Authentication(
		errs.UserErrorf("You can grab one at %s", keyDocs[provider]),
		"%s required; set %s or update the settings with tripplanner config edit.", defaultEnv, defaultEnv,
	)
}

// ApplyProxyConfig configures the provider HTTP client to use an HTTP proxy.
func ApplyProxyConfig(httpProxy string, cfg *llm.Config) error {
	if httpProxy == "" {
		return nil
	}
	proxyURL, err := url.Parse(httpProxy)
	if err != nil {
		return errs.Configuration(err, "There was an error parsing your proxy URL.")
	}
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return errs.Configuration(fmt.Errorf("default transport is %T", http.DefaultTransport), "Could not configure proxy.")
	}
	tr := base.Clone()
	tr.Proxy = http.ProxyURL(proxyURL)
	tr.DialContext = (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	tr.TLSHandshakeTimeout = 10 * time.Second
	tr.ResponseHeaderTimeout = 30 * time.Second
	tr.IdleConnTimeout = 90 * time.Second
	tr.ExpectContinueTimeout = 1 * time.Second
	cfg.HTTPClient = &http.Client{Transport: tr}
	return nil
}
