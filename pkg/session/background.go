package session

import (
	"context"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/quire/pkg/core"
)

// MinAutosaveInterval is the shortest interval Autosave accepts.
const MinAutosaveInterval = time.Second

// Autosave saves c's draft every interval, but only while it is dirty.
// Intervals shorter than MinAutosaveInterval disable autosave and Autosave
// reports false. The ticker stops when ctx is done.
func Autosave(ctx context.Context, c *Controller, interval time.Duration) bool {
	if interval < MinAutosaveInterval {
		return false
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if note, ok := c.SaveIfDirty(ctx); ok {
					c.logger.Debug("autosaved", "id", note.ID)
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		c.logger.Error("autosave stopped", "error", err)
	}))
	return true
}

// Follow refreshes c every time events reports a change to the store, until
// ctx is done or events is closed.
func Follow(ctx context.Context, c *Controller, events <-chan core.Event) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				if c.Refresh(ctx) {
					c.logger.Info("notes reloaded", "event", e.String())
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		c.logger.Error("store follower stopped", "error", err)
	}))
}
