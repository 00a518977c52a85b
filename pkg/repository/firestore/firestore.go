package firestore

import (
	"context"
	"net/url"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
)

const (
	roomsCollection     = "rooms"
	actorsCollection    = "actors"
	bansCollection      = "bans"
	reactionsCollection = "reactions"
	gamblersCollection  = "gamblers"
)

type Firestore struct {
	client   *firestore.Client
	room     *roomRepository
	actor    *actorRepository
	ban      *banRepository
	reaction *reactionRepository
	gambler  *gamblerRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, used to isolate test runs
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.room.prefix = prefix
		f.actor.prefix = prefix
		f.ban.prefix = prefix
		f.reaction.prefix = prefix
		f.gambler.prefix = prefix
	}
}

// New connects to Firestore. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}

	base := collectionBase{client: client}
	f := &Firestore{
		client:   client,
		room:     &roomRepository{collectionBase: base},
		actor:    &actorRepository{collectionBase: base},
		ban:      &banRepository{collectionBase: base},
		reaction: &reactionRepository{collectionBase: base},
		gambler:  &gamblerRepository{collectionBase: base},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Room() interfaces.RoomRepository {
	return f.room
}

func (f *Firestore) Actor() interfaces.ActorRepository {
	return f.actor
}

func (f *Firestore) Ban() interfaces.BanRepository {
	return f.ban
}

func (f *Firestore) Reaction() interfaces.ReactionRepository {
	return f.reaction
}

func (f *Firestore) Gambler() interfaces.GamblerRepository {
	return f.gambler
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

type collectionBase struct {
	client *firestore.Client
	prefix string
}

func (x *collectionBase) collection(name string) *firestore.CollectionRef {
	return x.client.Collection(collectionName(x.prefix, name))
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// BansCollection returns the name of the ban collection under prefix. Ban
// queries are the only ones that need composite indexes.
func BansCollection(prefix string) string {
	return collectionName(prefix, bansCollection)
}

// docID joins key parts into a document id that never contains a slash
func docID(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return strings.Join(escaped, ":")
}
