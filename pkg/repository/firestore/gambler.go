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

type gamblerRepository struct {
	collectionBase
}

var _ interfaces.GamblerRepository = &gamblerRepository{}

type gamblerDoc struct {
	RoomID     string    `firestore:"room_id"`
	ActorID    string    `firestore:"actor_id"`
	LastRollAt time.Time `firestore:"last_roll_at"`
	Penalty    int       `firestore:"penalty"`
	Rolls      int       `firestore:"rolls"`
	Wins       int       `firestore:"wins"`
}

func toGamblerDoc(g *model.Gambler) *gamblerDoc {
	return &gamblerDoc{
		RoomID:     string(g.RoomID),
		ActorID:    string(g.ActorID),
		LastRollAt: g.LastRollAt,
		Penalty:    g.Penalty,
		Rolls:      g.Rolls,
		Wins:       g.Wins,
	}
}

func fromGamblerDoc(doc *gamblerDoc) *model.Gambler {
	return &model.Gambler{
		RoomID:     types.RoomID(doc.RoomID),
		ActorID:    types.ActorID(doc.ActorID),
		LastRollAt: doc.LastRollAt,
		Penalty:    doc.Penalty,
		Rolls:      doc.Rolls,
		Wins:       doc.Wins,
	}
}

func (r *gamblerRepository) ref(g *model.Gambler) *firestore.DocumentRef {
	return r.collection(gamblersCollection).Doc(docID(string(g.RoomID), string(g.ActorID)))
}

func (r *gamblerRepository) GetOrCreate(ctx context.Context, g *model.Gambler) (*model.Gambler, error) {
	ref := r.ref(g)

	var result *model.Gambler
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				copied := *g
				result = &copied
				return tx.Create(ref, toGamblerDoc(g))
			}
			return goerr.Wrap(err, "failed to get gambler")
		}

		var doc gamblerDoc
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode gambler")
		}
		result = fromGamblerDoc(&doc)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get or create gambler", goerr.V("room_id", g.RoomID), goerr.V("actor_id", g.ActorID))
	}
	return result, nil
}

func (r *gamblerRepository) Save(ctx context.Context, g *model.Gambler) error {
	ref := r.ref(g)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "gambler not found")
			}
			return goerr.Wrap(err, "failed to get gambler")
		}
		return tx.Set(ref, toGamblerDoc(g))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to save gambler", goerr.V("room_id", g.RoomID), goerr.V("actor_id", g.ActorID))
	}
	return nil
}
