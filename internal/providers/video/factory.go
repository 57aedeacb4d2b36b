package video

import (
	"context"

	"github.com/rs/zerolog"
)

// TokenSource yields a provider credential, or "" when none is configured.
type TokenSource interface {
	ReplicateToken(ctx context.Context) (string, error)
}

// Factory picks a backend per submission: Replicate when a usable credential
// exists (environment first, stored configuration second), demo otherwise.
// The fallback is silent so the product works with zero external
// configuration; callers learn about it only through the IsDemo flag.
type Factory struct {
	envToken     string
	store        TokenSource
	replicateOpt ReplicateOptions
	demo         *Demo
	logger       zerolog.Logger
}

func NewFactory(envToken string, store TokenSource, replicateOpt ReplicateOptions, demo *Demo, logger zerolog.Logger) *Factory {
	return &Factory{
		envToken:     envToken,
		store:        store,
		replicateOpt: replicateOpt,
		demo:         demo,
		logger:       logger,
	}
}

// Select returns the backend for one submission and whether it is the demo
// fallback. Evaluated once per submission because the stored credential can
// change at runtime.
func (f *Factory) Select(ctx context.Context) (Generator, bool) {
	token := f.envToken
	if token == "" && f.store != nil {
		stored, err := f.store.ReplicateToken(ctx)
		if err != nil {
			f.logger.Warn().Err(err).Msg("factory: stored credential lookup failed, falling back to demo")
		} else {
			token = stored
		}
	}

	if token == "" {
		f.logger.Info().Msg("factory: using demo backend")
		return f.demo, true
	}

	f.logger.Info().Msg("factory: using replicate backend")
	opts := f.replicateOpt
	opts.APIToken = token
	return NewReplicate(opts, f.logger), false
}
