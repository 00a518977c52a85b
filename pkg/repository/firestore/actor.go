package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type actorRepository struct {
	collectionBase
}

var _ interfaces.ActorRepository = &actorRepository{}

type actorDoc struct {
	ID         string     `firestore:"id"`
	Name       string     `firestore:"name"`
	Birthday   *time.Time `firestore:"birthday"`
	CreatedAt  time.Time  `firestore:"created_at"`
	LastSeenAt time.Time  `firestore:"last_seen_at"`
}

func toActorDoc(a *model.Actor) *actorDoc {
	return &actorDoc{
		ID:         string(a.ID),
		Name:       a.Name,
		Birthday:   a.Birthday,
		CreatedAt:  a.CreatedAt,
		LastSeenAt: a.LastSeenAt,
	}
}

func fromActorDoc(doc *actorDoc) *model.Actor {
	return &model.Actor{
		ID:         types.ActorID(doc.ID),
		Name:       doc.Name,
		Birthday:   doc.Birthday,
		CreatedAt:  doc.CreatedAt,
		LastSeenAt: doc.LastSeenAt,
	}
}

func (r *actorRepository) GetOrCreate(ctx context.Context, actor *model.Actor) (*model.Actor, error) {
	ref := r.collection(actorsCollection).Doc(docID(string(actor.ID)))

	var result *model.Actor
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				result = actor.Copy()
				return tx.Create(ref, toActorDoc(actor))
			}
			return goerr.Wrap(err, "failed to get actor")
		}

		var doc actorDoc
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode actor")
		}
		result = fromActorDoc(&doc)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get or create actor", goerr.V("actor_id", actor.ID))
	}

	return result, nil
}

func (r *actorRepository) Get(ctx context.Context, id types.ActorID) (*model.Actor, error) {
	snap, err := r.collection(actorsCollection).Doc(docID(string(id))).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get actor", goerr.V("actor_id", id))
	}

	var doc actorDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode actor", goerr.V("actor_id", id))
	}
	return fromActorDoc(&doc), nil
}

func (r *actorRepository) Save(ctx context.Context, actor *model.Actor) error {
	ref := r.collection(actorsCollection).Doc(docID(string(actor.ID)))
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "actor not found")
			}
			return goerr.Wrap(err, "failed to get actor")
		}
		return tx.Set(ref, toActorDoc(actor))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to save actor", goerr.V("actor_id", actor.ID))
	}
	return nil
}
