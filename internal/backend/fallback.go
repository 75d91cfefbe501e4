package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/ialtaf14/Nova-AI/internal/reliability"
)

// FallbackBackend submits to primary and retries on fallback when primary
// cannot be reached. Status errors from a reachable primary are returned as is.
type FallbackBackend struct {
	primary  Backend
	fallback Backend
	logger   zerolog.Logger
}

func NewFallbackBackend(primary, fallback Backend, logger zerolog.Logger) *FallbackBackend {
	return &FallbackBackend{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "backend_fallback").Logger(),
	}
}

func (b *FallbackBackend) Primary() Backend   { return b.primary }
func (b *FallbackBackend) Secondary() Backend { return b.fallback }

func (b *FallbackBackend) Submit(ctx context.Context, req Request) (io.ReadCloser, error) {
	if b.primary == nil {
		if b.fallback == nil {
			return nil, errors.New("fallback backend misconfigured")
		}
		return b.fallback.Submit(ctx, req)
	}

	body, err := b.primary.Submit(ctx, req)
	if err == nil {
		return body, nil
	}
	var status *reliability.StatusError
	if reliability.Classify(err) == reliability.KindCancellation || errors.As(err, &status) || b.fallback == nil {
		return nil, err
	}

	b.logger.Warn().Err(err).Msg("primary backend unreachable; using fallback")
	body, fbErr := b.fallback.Submit(ctx, req)
	if fbErr != nil {
		return nil, fmt.Errorf("primary backend error: %w; fallback backend error: %v", err, fbErr)
	}
	return body, nil
}
