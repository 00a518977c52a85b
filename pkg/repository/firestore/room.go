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

type roomRepository struct {
	collectionBase
}

var _ interfaces.RoomRepository = &roomRepository{}

type roomDoc struct {
	ID                 string    `firestore:"id"`
	Platform           string    `firestore:"platform"`
	DiceTarget         int       `firestore:"dice_target"`
	RollCooldownHours  int       `firestore:"roll_cooldown_hours"`
	ReactionThreshold  int       `firestore:"reaction_threshold"`
	TurboWindowSeconds int       `firestore:"turbo_window_seconds"`
	Timezone           string    `firestore:"timezone"`
	BoardChannelID     string    `firestore:"board_channel_id"`
	Admins             []string  `firestore:"admins"`
	CreatedAt          time.Time `firestore:"created_at"`
	UpdatedAt          time.Time `firestore:"updated_at"`
}

func toRoomDoc(room *model.Room) *roomDoc {
	admins := make([]string, len(room.Admins))
	for i, a := range room.Admins {
		admins[i] = string(a)
	}
	return &roomDoc{
		ID:                 string(room.ID),
		Platform:           string(room.Platform),
		DiceTarget:         room.DiceTarget,
		RollCooldownHours:  room.RollCooldownHours,
		ReactionThreshold:  room.ReactionThreshold,
		TurboWindowSeconds: room.TurboWindowSeconds,
		Timezone:           room.Timezone,
		BoardChannelID:     string(room.BoardChannelID),
		Admins:             admins,
		CreatedAt:          room.CreatedAt,
		UpdatedAt:          room.UpdatedAt,
	}
}

func fromRoomDoc(doc *roomDoc) *model.Room {
	admins := make([]types.ActorID, len(doc.Admins))
	for i, a := range doc.Admins {
		admins[i] = types.ActorID(a)
	}
	return &model.Room{
		ID:       types.RoomID(doc.ID),
		Platform: types.Platform(doc.Platform),
		RoomSettings: model.RoomSettings{
			DiceTarget:         doc.DiceTarget,
			RollCooldownHours:  doc.RollCooldownHours,
			ReactionThreshold:  doc.ReactionThreshold,
			TurboWindowSeconds: doc.TurboWindowSeconds,
			Timezone:           doc.Timezone,
			BoardChannelID:     types.ChannelID(doc.BoardChannelID),
		},
		Admins:    admins,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func (r *roomRepository) GetOrCreate(ctx context.Context, room *model.Room) (*model.Room, error) {
	ref := r.collection(roomsCollection).Doc(docID(string(room.ID)))

	var result *model.Room
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				result = room.Copy()
				return tx.Create(ref, toRoomDoc(room))
			}
			return goerr.Wrap(err, "failed to get room")
		}

		var doc roomDoc
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode room")
		}
		result = fromRoomDoc(&doc)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get or create room", goerr.V("room_id", room.ID))
	}

	return result, nil
}

func (r *roomRepository) Get(ctx context.Context, id types.RoomID) (*model.Room, error) {
	snap, err := r.collection(roomsCollection).Doc(docID(string(id))).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get room", goerr.V("room_id", id))
	}

	var doc roomDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode room", goerr.V("room_id", id))
	}
	return fromRoomDoc(&doc), nil
}

func (r *roomRepository) Save(ctx context.Context, room *model.Room) error {
	ref := r.collection(roomsCollection).Doc(docID(string(room.ID)))
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "room not found")
			}
			return goerr.Wrap(err, "failed to get room")
		}
		return tx.Set(ref, toRoomDoc(room))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to save room", goerr.V("room_id", room.ID))
	}
	return nil
}
