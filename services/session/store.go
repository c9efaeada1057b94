package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli"
	"github.com/videoteca/cloud-import/services/common"
	"github.com/videoteca/cloud-import/services/importer"
)

const (
	ttlFlag         = "session-ttl"
	keyPrefix       = "import:session:"
	maxSwapAttempts = 8
)

// swapScript replaces KEYS[1] with ARGV[2] only while it still holds ARGV[1].
const swapScript = `
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   ttlFlag,
			Usage:  "lifetime of an idle import session",
			Value:  time.Hour,
			EnvVar: "SESSION_TTL",
		},
	)
}

type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Store keeps import session states as JSON in Redis. Every write renews
// the TTL.
type Store struct {
	cl  kv
	ttl time.Duration
}

func NewStore(c *cli.Context, cl redis.UniversalClient) *Store {
	return &Store{
		cl:  cl,
		ttl: c.Duration(ttlFlag),
	}
}

func key(id string) string {
	return keyPrefix + id
}

func (s *Store) Get(ctx context.Context, id string) (*importer.State, error) {
	st, _, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) load(ctx context.Context, id string) (*importer.State, []byte, error) {
	b, err := s.cl.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil, errors.Wrapf(common.ErrSessionNotFound, "session %v", id)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get session")
	}
	var st importer.State
	if err = json.Unmarshal(b, &st); err != nil {
		return nil, nil, errors.Wrap(err, "failed to decode session")
	}
	return &st, b, nil
}

func (s *Store) Set(ctx context.Context, id string, st importer.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "failed to encode session")
	}
	if err = s.cl.Set(ctx, key(id), b, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to save session")
	}
	return nil
}

// Update applies fn to the stored state and writes the result back only if
// nobody else wrote in between; on conflict fn runs again on the newer
// state. Nothing is written when fn reports no change.
func (s *Store) Update(ctx context.Context, id string, fn func(importer.State) (importer.State, bool)) (importer.State, error) {
	for i := 0; i < maxSwapAttempts; i++ {
		cur, raw, err := s.load(ctx, id)
		if err != nil {
			return importer.State{}, err
		}
		next, changed := fn(*cur)
		if !changed {
			return *cur, nil
		}
		b, err := json.Marshal(next)
		if err != nil {
			return importer.State{}, errors.Wrap(err, "failed to encode session")
		}
		ok, err := s.cl.Eval(ctx, swapScript, []string{key(id)}, raw, b, s.ttl.Milliseconds()).Int64()
		if err != nil {
			return importer.State{}, errors.Wrap(err, "failed to save session")
		}
		if ok == 1 {
			return next, nil
		}
	}
	return importer.State{}, errors.Errorf("session %v is changing too fast to be saved", id)
}

// bound is the state of one session as seen by the import workflow.
type bound struct {
	states states
	id     string
}

func (b *bound) Load(ctx context.Context) (importer.State, error) {
	st, err := b.states.Get(ctx, b.id)
	if err != nil {
		return importer.State{}, err
	}
	return *st, nil
}

func (b *bound) Update(ctx context.Context, fn func(importer.State) (importer.State, bool)) (importer.State, error) {
	return b.states.Update(ctx, b.id, fn)
}
