package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/dentest-backend/internal/domain/quizsession"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type redisStore struct {
	rdb    goredis.UniversalClient
	ttl    time.Duration
	prefix string
	log    *logger.Logger
}

func NewRedisStore(rdb goredis.UniversalClient, ttl time.Duration, baseLog *logger.Logger) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStore{
		rdb:    rdb,
		ttl:    ttl,
		prefix: "dentest:quiz",
		log:    baseLog.With("store", "RedisQuizSessionStore"),
	}
}

func (s *redisStore) sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

func (s *redisStore) answersKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s:answers", s.prefix, id)
}

func (s *redisStore) activeKey(loginSessionID uuid.UUID) string {
	return fmt.Sprintf("%s:active:%s", s.prefix, loginSessionID)
}

func (s *redisStore) Save(ctx context.Context, qs *quizsession.Session) error {
	raw, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.sessionKey(qs.ID), raw, s.ttl)
	pipe.Expire(ctx, s.answersKey(qs.ID), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

var updateIfExists = goredis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
redis.call("PEXPIRE", KEYS[2], ARGV[2])
return 1
`)

func (s *redisStore) Update(ctx context.Context, qs *quizsession.Session) error {
	raw, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	keys := []string{s.sessionKey(qs.ID), s.answersKey(qs.ID)}
	n, err := updateIfExists.Run(ctx, s.rdb, keys, raw, s.ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, userID, sessionID uuid.UUID) (*quizsession.Session, error) {
	raw, err := s.rdb.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var qs quizsession.Session
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, fmt.Errorf("decode quiz session %s: %w", sessionID, err)
	}
	if qs.UserID != userID {
		return nil, ErrNotFound
	}

	fields, err := s.rdb.HGetAll(ctx, s.answersKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	qs.Answers = make(map[uuid.UUID]quizsession.Answer, len(fields))
	for _, v := range fields {
		var a quizsession.Answer
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			s.log.Warn("Skipping undecodable answer", "session_id", sessionID, "error", err)
			continue
		}
		qs.Answers[a.QuestionID] = a
	}
	return &qs, nil
}

// claimAnswer sets the answer field only while the session blob exists and
// keeps the answers hash on the session TTL. It returns -1 for a missing
// session, 1 when claimed and 0 when the field was already set.
var claimAnswer = goredis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
if redis.call("HSETNX", KEYS[2], ARGV[1], ARGV[2]) == 1 then
	redis.call("PEXPIRE", KEYS[2], ARGV[3])
	return 1
end
return 0
`)

func (s *redisStore) ClaimAnswer(ctx context.Context, sessionID uuid.UUID, a quizsession.Answer) (quizsession.Answer, bool, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return quizsession.Answer{}, false, err
	}
	key := s.answersKey(sessionID)
	keys := []string{s.sessionKey(sessionID), key}
	n, err := claimAnswer.Run(ctx, s.rdb, keys, a.QuestionID.String(), raw, s.ttl.Milliseconds()).Int()
	if err != nil {
		return quizsession.Answer{}, false, err
	}
	switch n {
	case -1:
		return quizsession.Answer{}, false, ErrNotFound
	case 1:
		return a, true, nil
	}
	existing, err := s.rdb.HGet(ctx, key, a.QuestionID.String()).Bytes()
	if err != nil {
		return quizsession.Answer{}, false, err
	}
	var prev quizsession.Answer
	if err := json.Unmarshal(existing, &prev); err != nil {
		return quizsession.Answer{}, false, err
	}
	return prev, false, nil
}

func (s *redisStore) ReleaseAnswer(ctx context.Context, sessionID, questionID uuid.UUID) error {
	return s.rdb.HDel(ctx, s.answersKey(sessionID), questionID.String()).Err()
}

func (s *redisStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.rdb.Del(ctx, s.sessionKey(sessionID), s.answersKey(sessionID)).Err()
}

func (s *redisStore) SetActive(ctx context.Context, loginSessionID, sessionID uuid.UUID) error {
	return s.rdb.Set(ctx, s.activeKey(loginSessionID), sessionID.String(), s.ttl).Err()
}

func (s *redisStore) GetActive(ctx context.Context, loginSessionID uuid.UUID) (uuid.UUID, error) {
	v, err := s.rdb.Get(ctx, s.activeKey(loginSessionID)).Result()
	if errors.Is(err, goredis.Nil) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, nil
	}
	return id, nil
}

var clearIfEqual = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *redisStore) ClearActive(ctx context.Context, loginSessionID, sessionID uuid.UUID) error {
	return clearIfEqual.Run(ctx, s.rdb, []string{s.activeKey(loginSessionID)}, sessionID.String()).Err()
}
