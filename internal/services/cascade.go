package services

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-diet-backend/internal/repo"
	"github.com/tbourn/go-diet-backend/internal/store"
)

// cascadeDeleted counts documents removed by cascading deletes.
var cascadeDeleted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "diet_cascade_deleted_documents_total",
		Help: "Documents removed by cascading deletes, by collection.",
	},
	[]string{"collection"},
)

func init() {
	prometheus.MustRegister(cascadeDeleted)
}

// Dependent names a collection whose documents point at the parent through
// ForeignKey.
type Dependent struct {
	Collection string
	ForeignKey string
}

// CascadeDeleter removes a parent document and every dependent document as
// an ordered sequence of idempotent steps. The store offers no
// cross-collection transaction, so the sequence is not atomic:
//
//  1. For each dependent collection, in order, query the documents whose
//     foreign key equals the parent id and delete them. Deletes within one
//     collection run with bounded concurrency.
//  2. Delete the parent, only after every dependent query and delete has
//     completed.
//
// A failure stops the sequence and is returned wrapped as
// ErrStoreUnavailable. Absent documents are skipped, so re-running the
// delete resumes where the previous attempt stopped.
type CascadeDeleter struct {
	Store      store.Client
	Parent     string
	Dependents []Dependent
	// Concurrency bounds parallel deletes per collection. Values <= 0 mean 1.
	Concurrency int
	Log         zerolog.Logger
}

// NewDietCascade returns the cascade for diets: shopping lists, then recipe
// references, then the diet.
func NewDietCascade(s store.Client, concurrency int) *CascadeDeleter {
	return &CascadeDeleter{
		Store:  s,
		Parent: repo.CollectionDiets,
		Dependents: []Dependent{
			{Collection: repo.CollectionShoppingLists, ForeignKey: repo.FieldDietID},
			{Collection: repo.CollectionRecipeReferences, ForeignKey: repo.FieldDietID},
		},
		Concurrency: concurrency,
		Log:         log.Logger,
	}
}

// Delete implements Cascader.
func (c *CascadeDeleter) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("services/CascadeDeleter").Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("parent.collection", c.Parent),
			attribute.String("parent.id", id),
		))
	defer span.End()

	for _, dep := range c.Dependents {
		n, err := c.deleteDependents(ctx, dep, id)
		if err != nil {
			recordErr(span, err)
			return err
		}
		span.SetAttributes(attribute.Int(dep.Collection+".deleted", n))
		c.Log.Debug().Str("collection", dep.Collection).Str("parent_id", id).Int("deleted", n).Msg("cascade step done")
	}

	if err := c.Store.Delete(ctx, c.Parent, id); err != nil {
		err = fmt.Errorf("%w: delete %s/%s: %w", ErrStoreUnavailable, c.Parent, id, err)
		recordErr(span, err)
		return err
	}
	cascadeDeleted.WithLabelValues(c.Parent).Inc()
	return nil
}

func (c *CascadeDeleter) deleteDependents(ctx context.Context, dep Dependent, parentID string) (int, error) {
	docs, err := c.Store.QueryByField(ctx, dep.Collection, dep.ForeignKey, parentID)
	if err != nil {
		return 0, fmt.Errorf("%w: query %s: %w", ErrStoreUnavailable, dep.Collection, err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	limit := c.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, doc := range docs {
		docID := doc.ID
		g.Go(func() error {
			if err := c.Store.Delete(gctx, dep.Collection, docID); err != nil {
				return fmt.Errorf("%w: delete %s/%s: %w", ErrStoreUnavailable, dep.Collection, docID, err)
			}
			cascadeDeleted.WithLabelValues(dep.Collection).Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(docs), nil
}
