package firestore

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type reactionRepository struct {
	collectionBase
}

var _ interfaces.ReactionRepository = &reactionRepository{}

type reactionDoc struct {
	RoomID    string    `firestore:"room_id"`
	MessageID string    `firestore:"message_id"`
	Emoji     string    `firestore:"emoji"`
	HandledAt time.Time `firestore:"handled_at"`
}

func (r *reactionRepository) Get(ctx context.Context, room types.RoomID, message types.MessageID, emoji string) (*model.ReactionRecord, error) {
	snap, err := r.collection(reactionsCollection).Doc(docID(string(room), string(message), emoji)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get reaction record",
			goerr.V("room_id", room), goerr.V("message_id", message), goerr.V("emoji", emoji))
	}

	var doc reactionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode reaction record", goerr.V("doc_id", snap.Ref.ID))
	}
	return &model.ReactionRecord{
		RoomID:    types.RoomID(doc.RoomID),
		MessageID: types.MessageID(doc.MessageID),
		Emoji:     doc.Emoji,
		HandledAt: doc.HandledAt,
	}, nil
}

func (r *reactionRepository) Put(ctx context.Context, record *model.ReactionRecord) error {
	ref := r.collection(reactionsCollection).Doc(docID(string(record.RoomID), string(record.MessageID), record.Emoji))
	doc := &reactionDoc{
		RoomID:    string(record.RoomID),
		MessageID: string(record.MessageID),
		Emoji:     record.Emoji,
		HandledAt: record.HandledAt,
	}
	if _, err := ref.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put reaction record",
			goerr.V("room_id", record.RoomID), goerr.V("message_id", record.MessageID), goerr.V("emoji", record.Emoji))
	}
	return nil
}
