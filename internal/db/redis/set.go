package redis

import (
	"context"

	"github.com/kailas-cloud/learnscout/internal/db"
)

// Scripts run atomically on the server. KEYS[1] is the set, KEYS[2] the count hash.
// Both keys must hash to the same cluster slot.
const (
	sAddCountedScript = `if redis.call('SADD', KEYS[1], ARGV[1]) == 1 then
  redis.call('HINCRBY', KEYS[2], ARGV[1], 1)
  return 1
end
return 0`

	sRemCountedScript = `if redis.call('SREM', KEYS[1], ARGV[1]) == 1 then
  if redis.call('HINCRBY', KEYS[2], ARGV[1], -1) <= 0 then
    redis.call('HDEL', KEYS[2], ARGV[1])
  end
  return 1
end
return 0`
)

// SAddCounted adds member to the set and, when it was new, increments its count.
func (s *Store) SAddCounted(ctx context.Context, setKey, countKey, member string) (bool, error) {
	return s.evalCounted(ctx, db.OpSAdd, sAddCountedScript, setKey, countKey, member)
}

// SRemCounted removes member from the set and, when it was present, decrements its count.
func (s *Store) SRemCounted(ctx context.Context, setKey, countKey, member string) (bool, error) {
	return s.evalCounted(ctx, db.OpSRem, sRemCountedScript, setKey, countKey, member)
}

func (s *Store) evalCounted(ctx context.Context, op, script, setKey, countKey, member string) (bool, error) {
	cmd := s.b().Eval().Script(script).Numkeys(2).Key(setKey, countKey).Arg(member).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: op, Err: err}
	}
	return n == 1, nil
}

// SMembers returns every member of a set. A missing key yields an empty slice.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	cmd := s.b().Smembers().Key(key).Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	return members, nil
}
