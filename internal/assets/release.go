package assets

import (
	"context"
	"log/slog"

	"github.com/nfrund/folio/internal/pubsub"
	"github.com/nfrund/folio/internal/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReleaseEvent asks for a stored asset to be deleted.
type ReleaseEvent struct {
	ID     string `json:"id"`
	URL    string `json:"url,omitempty"`
	Reason string `json:"reason"`
}

// ReleaseRequested is published after a document save drops an asset.
var ReleaseRequested = pubsub.NewEvent[ReleaseEvent]("assets.release")

// Releaser schedules deletion of assets that are no longer referenced.
type Releaser struct {
	pub   pubsub.Publisher
	store storage.Store
}

// NewReleaser creates a releaser that publishes on pub. store is only used
// to recognize URLs of assets it hosts.
func NewReleaser(pub pubsub.Publisher, store storage.Store) *Releaser {
	return &Releaser{pub: pub, store: store}
}

// Release schedules deletion of the asset identified by id, or by url when
// no id was recorded. Assets not hosted by the store are ignored. Failures
// are logged and never returned; the caller's mutation has already succeeded.
func (r *Releaser) Release(ctx context.Context, id, url, reason string) {
	key := id
	if key == "" && url != "" {
		k, ok := r.store.KeyFromURL(url)
		if !ok {
			slog.DebugContext(ctx, "Skipping release of external asset",
				"event", "asset_release_skipped",
				"url", url,
				"reason", reason)
			return
		}
		key = k
	}
	if key == "" {
		return
	}

	evt := ReleaseEvent{ID: key, URL: url, Reason: reason}
	if err := pubsub.Publish(context.WithoutCancel(ctx), r.pub, ReleaseRequested, evt); err != nil {
		slog.WarnContext(ctx, "Failed to schedule asset release",
			"event", "asset_release_publish_failed",
			"key", key,
			"error", err)
	}
}

// ReleaseWorker deletes assets named by ReleaseRequested events.
type ReleaseWorker struct {
	sub    pubsub.Subscriber
	store  storage.Store
	tracer trace.Tracer
}

// NewReleaseWorker creates a worker that deletes through store.
func NewReleaseWorker(sub pubsub.Subscriber, store storage.Store, tracer trace.Tracer) *ReleaseWorker {
	return &ReleaseWorker{sub: sub, store: store, tracer: tracer}
}

// Start subscribes the worker. It returns once the subscription is active;
// deletions run in the background until ctx is canceled.
func (w *ReleaseWorker) Start(ctx context.Context) error {
	return pubsub.Subscribe(ctx, w.sub, ReleaseRequested, w.handle)
}

func (w *ReleaseWorker) handle(ctx context.Context, evt ReleaseEvent) error {
	ctx, span := w.tracer.Start(ctx, "assets.release.delete",
		trace.WithAttributes(
			attribute.String("asset.key", evt.ID),
			attribute.String("asset.release_reason", evt.Reason),
		))
	defer span.End()

	if err := w.store.Delete(ctx, evt.ID); err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "Failed to delete released asset",
			"event", "asset_release_failed",
			"key", evt.ID,
			"reason", evt.Reason,
			"error", err)
		return nil
	}

	slog.InfoContext(ctx, "Released asset deleted",
		"event", "asset_released",
		"key", evt.ID,
		"reason", evt.Reason)
	return nil
}
