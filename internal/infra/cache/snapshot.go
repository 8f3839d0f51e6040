package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/signoffhq/signoff/internal/modules/model"
)

const (
	snapshotKeyPrefix   = "signoff:snapshot:project:"
	generationKeyPrefix = "signoff:snapshot:gen:"

	// generationTTL only has to outlive any in-flight store load.
	generationTTL = 24 * time.Hour
)

// setIfGeneration writes the snapshot only when no invalidation happened
// since the caller read the generation.
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[2]) or '0'
if cur ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// ProjectSnapshots caches the read projection of a project aggregate.
// Entries expire after ttl, so a missed invalidation is bounded by it.
type ProjectSnapshots struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProjectSnapshots(rdb *redis.Client, ttl time.Duration) *ProjectSnapshots {
	return &ProjectSnapshots{rdb: rdb, ttl: ttl}
}

func snapshotKey(projectID uuid.UUID) string {
	return snapshotKeyPrefix + projectID.String()
}

func generationKey(projectID uuid.UUID) string {
	return generationKeyPrefix + projectID.String()
}

// Get returns (nil, gen, nil) on a cache miss. gen must be handed back to Set
// after loading the aggregate from the store.
func (s *ProjectSnapshots) Get(ctx context.Context, projectID uuid.UUID) (*model.Project, int64, error) {
	vals, err := s.rdb.MGet(ctx, snapshotKey(projectID), generationKey(projectID)).Result()
	if err != nil {
		return nil, 0, err
	}

	var gen int64
	if g, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(g, 10, 64); err != nil {
			return nil, 0, err
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}
	var p model.Project
	if err := sonic.UnmarshalString(raw, &p); err != nil {
		// a corrupt entry is a miss
		_ = s.rdb.Del(ctx, snapshotKey(projectID)).Err()
		return nil, gen, nil
	}
	return &p, gen, nil
}

// Set stores p unless the project was invalidated after gen was read.
func (s *ProjectSnapshots) Set(ctx context.Context, p *model.Project, gen int64) (bool, error) {
	raw, err := sonic.MarshalString(p)
	if err != nil {
		return false, err
	}
	stored, err := setIfGeneration.Run(ctx, s.rdb,
		[]string{snapshotKey(p.ID), generationKey(p.ID)},
		strconv.FormatInt(gen, 10), raw, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate bumps the generation before dropping the entry, so a load that
// started earlier can no longer write its result back.
func (s *ProjectSnapshots) Invalidate(ctx context.Context, projectID uuid.UUID) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(projectID))
		pipe.Expire(ctx, generationKey(projectID), generationTTL)
		pipe.Del(ctx, snapshotKey(projectID))
		return nil
	})
	return err
}
