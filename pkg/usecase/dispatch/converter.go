package dispatch

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/utils/timespec"
)

// The binder tries these conversion strategies in the order they are declared.

// ContextConverter needs the invocation context, e.g. the room timezone
type ContextConverter interface {
	WithContext(ctx context.Context, raw string, cctx *Context) (any, error)
}

// StringConverter parses a value from its string form
type StringConverter interface {
	FromString(raw string) (any, error)
}

// RepositoryConverter loads a value from the repository
type RepositoryConverter interface {
	Load(ctx context.Context, repo interfaces.Repository, raw string) (any, error)
}

// Constructor wraps the raw string as is
type Constructor interface {
	Construct(raw string) (any, error)
}

type stringConverter struct{}

func (stringConverter) Construct(raw string) (any, error) {
	return raw, nil
}

type intConverter struct{}

func (intConverter) FromString(raw string) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "not an integer")
	}
	return n, nil
}

type timeConverter struct {
	now func() time.Time
}

// WithContext never fails: an unreadable time becomes a zero delay and the
// command body decides whether that is acceptable.
func (x timeConverter) WithContext(ctx context.Context, raw string, cctx *Context) (any, error) {
	loc := time.UTC
	if cctx != nil && cctx.Room != nil {
		loc = cctx.Room.Location()
	}
	return timespec.Parse(raw, x.now(), loc), nil
}

var mentionPattern = regexp.MustCompile(`^<@!?([A-Za-z0-9_.\-]+)(?:\|[^>]*)?>$`)

// ParseMention extracts the actor id from <@U123>, <@!123> or <@U123|name>
func ParseMention(raw string) (types.ActorID, bool) {
	m := mentionPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return types.ActorID(m[1]), true
}

type actorConverter struct {
	now func() time.Time
}

func (x actorConverter) Load(ctx context.Context, repo interfaces.Repository, raw string) (any, error) {
	id, ok := ParseMention(raw)
	if !ok {
		return nil, goerr.New("not a mention")
	}
	actor, err := repo.Actor().GetOrCreate(ctx, model.NewActor(id, x.now()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load actor", goerr.V("actor_id", id))
	}
	return actor, nil
}
