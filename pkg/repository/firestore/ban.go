package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type banRepository struct {
	collectionBase
}

var _ interfaces.BanRepository = &banRepository{}

type banDoc struct {
	ID            string     `firestore:"id"`
	RoomID        string     `firestore:"room_id"`
	BanneeID      string     `firestore:"bannee_id"`
	BannerID      string     `firestore:"banner_id"`
	Reason        string     `firestore:"reason"`
	IssuedAt      time.Time  `firestore:"issued_at"`
	ExpiresAt     time.Time  `firestore:"expires_at"`
	Voided        bool       `firestore:"voided"`
	VoidedEarlyAt *time.Time `firestore:"voided_early_at"`
	Acknowledged  bool       `firestore:"acknowledged"`
	Turbo         bool       `firestore:"turbo"`
}

func toBanDoc(b *model.Ban) *banDoc {
	return &banDoc{
		ID:            string(b.ID),
		RoomID:        string(b.RoomID),
		BanneeID:      string(b.BanneeID),
		BannerID:      string(b.BannerID),
		Reason:        b.Reason,
		IssuedAt:      b.IssuedAt,
		ExpiresAt:     b.ExpiresAt,
		Voided:        b.Voided,
		VoidedEarlyAt: b.VoidedEarlyAt,
		Acknowledged:  b.Acknowledged,
		Turbo:         b.Turbo,
	}
}

func fromBanDoc(doc *banDoc) *model.Ban {
	return &model.Ban{
		ID:            types.BanID(doc.ID),
		RoomID:        types.RoomID(doc.RoomID),
		BanneeID:      types.ActorID(doc.BanneeID),
		BannerID:      types.ActorID(doc.BannerID),
		Reason:        doc.Reason,
		IssuedAt:      doc.IssuedAt,
		ExpiresAt:     doc.ExpiresAt,
		Voided:        doc.Voided,
		VoidedEarlyAt: doc.VoidedEarlyAt,
		Acknowledged:  doc.Acknowledged,
		Turbo:         doc.Turbo,
	}
}

func (r *banRepository) ref(room types.RoomID, id types.BanID) *firestore.DocumentRef {
	return r.collection(bansCollection).Doc(docID(string(room), string(id)))
}

func (r *banRepository) Create(ctx context.Context, ban *model.Ban) error {
	if err := ban.Validate(); err != nil {
		return goerr.Wrap(err, "failed to create ban")
	}

	if _, err := r.ref(ban.RoomID, ban.ID).Create(ctx, toBanDoc(ban)); err != nil {
		return goerr.Wrap(err, "failed to create ban", goerr.V("ban_id", ban.ID), goerr.V("room_id", ban.RoomID))
	}
	return nil
}

func (r *banRepository) Get(ctx context.Context, room types.RoomID, id types.BanID) (*model.Ban, error) {
	snap, err := r.ref(room, id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get ban", goerr.V("ban_id", id), goerr.V("room_id", room))
	}

	var doc banDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ban", goerr.V("ban_id", id))
	}
	return fromBanDoc(&doc), nil
}

func (r *banRepository) currentQuery(room types.RoomID) firestore.Query {
	return r.collection(bansCollection).
		Where("room_id", "==", string(room)).
		Where("voided", "==", false).
		Where("acknowledged", "==", false)
}

func (r *banRepository) GetCurrent(ctx context.Context, room types.RoomID, bannee types.ActorID) (*model.Ban, error) {
	iter := r.currentQuery(room).
		Where("bannee_id", "==", string(bannee)).
		OrderBy("expires_at", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	bans, err := collectBans(iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get current ban", goerr.V("room_id", room), goerr.V("bannee_id", bannee))
	}
	if len(bans) == 0 {
		return nil, nil
	}
	return bans[0], nil
}

func (r *banRepository) ListCurrent(ctx context.Context, room types.RoomID) ([]*model.Ban, error) {
	iter := r.currentQuery(room).
		OrderBy("expires_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	bans, err := collectBans(iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list current bans", goerr.V("room_id", room))
	}
	return bans, nil
}

func (r *banRepository) Save(ctx context.Context, ban *model.Ban) error {
	ref := r.ref(ban.RoomID, ban.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "ban not found")
			}
			return goerr.Wrap(err, "failed to get ban")
		}
		return tx.Set(ref, toBanDoc(ban))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to save ban", goerr.V("ban_id", ban.ID), goerr.V("room_id", ban.RoomID))
	}
	return nil
}

func collectBans(iter *firestore.DocumentIterator) ([]*model.Ban, error) {
	var bans []*model.Ban
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate bans")
		}

		var doc banDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode ban", goerr.V("doc_id", snap.Ref.ID))
		}
		bans = append(bans, fromBanDoc(&doc))
	}
	return bans, nil
}
