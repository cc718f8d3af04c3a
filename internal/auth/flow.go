// Package auth provides the per-backend authentication lifecycle: the
// silent/interactive retry primitive, the coordinator registry that fans out
// redirect callbacks, and persisted token storage.
package auth

import (
	"context"

	"go.uber.org/zap"

	"tunelink/internal/core"
)

// Strategy is the backend-specific part of the authentication lifecycle.
// S is the live session handle handed to authenticated operations.
type Strategy[S any] interface {
	Name() string

	// HasCredential reports whether any cached credential exists, without
	// performing network I/O.
	HasCredential() bool

	// Authorize ensures a usable session. When silent, it must never
	// surface interactive login UI; the caller discovers failure when the
	// wrapped operation itself fails.
	Authorize(ctx context.Context, silent bool) (S, error)

	// Invalidate discards the cached credential and session so a
	// permanently rejected token is never retried forever.
	Invalidate()

	// CredentialRejected reports whether err is the backend's
	// "credential rejected by server" signature.
	CredentialRejected(err error) bool
}

// Flow binds a strategy to the notification surface and log. It is the
// "run this operation with valid credentials" entry point used by every
// backend operation that talks to the external API.
type Flow[S any] struct {
	Strategy Strategy[S]
	Notifier core.Notifier
	Logger   *zap.Logger
}

// Run authorizes and invokes onAuthenticated with the live session.
//
// Silent mode with no cached credential short-circuits straight to
// onFailure: a background poll must never pop a login prompt. When
// onAuthenticated fails with a rejected credential, the credential is
// invalidated; in non-silent mode authorization and the operation are then
// retried exactly once, in silent mode the call falls through to onFailure
// without retrying. Any other failure is notified (non-silent only) and
// falls through to onFailure without invalidating anything.
//
// Run is reentrant: concurrent silent and non-silent runs for the same
// backend may be in flight simultaneously, each authorizing independently.
// Authorization is idempotent once a valid session exists, so there is no
// mutual exclusion.
func Run[S, T any](
	ctx context.Context,
	flow *Flow[S],
	silent bool,
	onAuthenticated func(ctx context.Context, session S) (T, error),
	onFailure func(ctx context.Context) (T, error),
) (T, error) {
	strategy := flow.Strategy

	if silent && !strategy.HasCredential() {
		return onFailure(ctx)
	}

	session, err := strategy.Authorize(ctx, silent)
	if err != nil {
		flow.Logger.Debug("authorization failed",
			zap.String("backend", strategy.Name()),
			zap.Bool("silent", silent),
			zap.Error(err))
		if !silent {
			flow.Notifier.Notify(strategy.Name() + ": " + err.Error())
		}
		return onFailure(ctx)
	}

	result, err := onAuthenticated(ctx, session)
	if err == nil {
		return result, nil
	}

	if strategy.CredentialRejected(err) {
		flow.Logger.Info("credential rejected, invalidating",
			zap.String("backend", strategy.Name()),
			zap.Bool("silent", silent))
		strategy.Invalidate()

		if !silent {
			flow.Notifier.Notify(strategy.Name() + ": session expired, signing in again")
			if session, err = strategy.Authorize(ctx, false); err == nil {
				if result, err = onAuthenticated(ctx, session); err == nil {
					return result, nil
				}
				flow.Notifier.Notify(strategy.Name() + ": " + err.Error())
			}
		}
		return onFailure(ctx)
	}

	flow.Logger.Warn("authenticated operation failed",
		zap.String("backend", strategy.Name()),
		zap.Bool("silent", silent),
		zap.Error(err))
	if !silent {
		flow.Notifier.Notify(strategy.Name() + ": " + err.Error())
	}
	return onFailure(ctx)
}
