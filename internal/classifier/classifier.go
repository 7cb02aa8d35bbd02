package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"filesort/internal/category"
	"filesort/internal/logging"
	"filesort/internal/scanner"
	"filesort/internal/services"
)

// Backend issues one completion request per call. Implementations must not
// retry.
type Backend interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Classifier maps file metadata to a category through a Backend.
type Classifier struct {
	kind    Kind
	model   string
	backend Backend
	logger  *slog.Logger
}

// Option customizes a Classifier.
type Option func(*options)

type options struct {
	httpClient *http.Client
	backend    Backend
}

// WithHTTPClient overrides the HTTP client used by the built-in backends.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithBackend replaces the provider backend entirely.
func WithBackend(backend Backend) Option {
	return func(o *options) {
		if backend != nil {
			o.backend = backend
		}
	}
}

// New validates cfg and builds the backend for its provider. An unsupported
// provider or an empty API key is reported as a configuration error.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Classifier, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	kind, err := ParseKind(string(cfg.Kind))
	if err != nil {
		return nil, err
	}
	cfg.Kind = kind
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" && o.backend == nil {
		return nil, services.Wrap(services.ErrConfiguration, "classifier", "init", fmt.Sprintf("api key required for provider %s", kind), nil)
	}

	backend := o.backend
	if backend == nil {
		switch kind {
		case KindClaude:
			backend = newAnthropicBackend(cfg, o.httpClient)
		case KindOpenAI, KindGroq:
			backend = newOpenAIBackend(cfg, o.httpClient)
		}
	}

	return &Classifier{
		kind:    kind,
		model:   cfg.Model,
		backend: backend,
		logger: logging.NewComponentLogger(logger, "classifier").With(
			logging.String(logging.FieldProvider, string(kind)),
		),
	}, nil
}

// Kind reports the provider in use.
func (c *Classifier) Kind() Kind { return c.kind }

// Classify asks the provider for rec's category. It never returns an error:
// failures, refusals, and replies outside the category set all yield
// category.Other.
func (c *Classifier) Classify(ctx context.Context, rec scanner.FileRecord) (result category.Category) {
	logger := logging.WithContext(ctx, c.logger)
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(logger, "classification panicked", "classification_panic",
				logging.String(logging.FieldFile, rec.Name),
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldErrorHint, "report this provider reply as a bug"),
				logging.String(logging.FieldImpact, "file filed under other"),
			)
			result = category.Other
		}
	}()

	reply, err := c.backend.Complete(ctx, systemPrompt, buildPrompt(rec))
	if err != nil {
		logging.WarnWithContext(logger, "classification failed", "classification_failed",
			logging.String(logging.FieldFile, rec.Name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, errorHint(err)),
			logging.String(logging.FieldImpact, "file filed under other"),
		)
		return category.Other
	}

	result = category.Parse(reply)
	if result == category.Other && !strings.EqualFold(strings.TrimSpace(reply), string(category.Other)) {
		logger.Debug("reply outside category set",
			logging.String(logging.FieldFile, rec.Name),
			logging.String("reply", summarizeSnippet(reply)),
		)
	}
	logger.Debug("file classified",
		logging.String(logging.FieldFile, rec.Name),
		logging.String(logging.FieldCategory, string(result)),
	)
	return result
}

// Ping sends a minimal request to verify the key, model, and endpoint. Unlike
// Classify it reports the failure.
func (c *Classifier) Ping(ctx context.Context) error {
	if _, err := c.backend.Complete(ctx, systemPrompt, "Respond with the single word: ok"); err != nil {
		return services.Wrap(services.ErrExternalTool, "classifier", "ping", fmt.Sprintf("%s (%s)", c.kind, errorHint(err)), err)
	}
	return nil
}
