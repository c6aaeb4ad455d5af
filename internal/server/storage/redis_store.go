package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/game"
)

const (
	// Redis key 前缀
	gameKeyPrefix   = "game:"
	playerKeyPrefix = "player:"
	activeGamesKey  = "games:active"

	// 会话数据过期时间
	gameExpiration = 24 * time.Hour
)

// 会话哈希中的字段
const (
	fieldVersion = "version"
	fieldSession = "session"
	fieldRooms   = "rooms"
	fieldDoors   = "doors"
	fieldPlayers = "players"
	fieldChoices = "choices"
	fieldCards   = "cards"
	fieldEffects = "effects"
)

// RedisStore Redis 存储。每个会话是一个哈希，每类记录一个字段。
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func gameKey(sessionID string) string {
	return gameKeyPrefix + sessionID
}

func playerKey(playerID string) string {
	return playerKeyPrefix + playerID
}

// Create 保存新会话
func (rs *RedisStore) Create(ctx context.Context, st *game.State) error {
	key := gameKey(st.Session.ID)
	err := rs.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrExists
		}

		st.Version = 1
		fields, err := encodeState(st)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, gameExpiration)
			for _, p := range st.Players {
				pipe.Set(ctx, playerKey(p.ID), st.Session.ID, gameExpiration)
			}
			pipe.SAdd(ctx, activeGamesKey, st.Session.ID)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

// Load 从 Redis 加载会话
func (rs *RedisStore) Load(ctx context.Context, sessionID string) (*game.State, error) {
	data, err := rs.client.HGetAll(ctx, gameKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return decodeState(data)
}

// Update 使用 WATCH/MULTI 做乐观锁更新
func (rs *RedisStore) Update(ctx context.Context, sessionID string, fn MutateFunc) (*game.State, error) {
	key := gameKey(sessionID)
	var committed *game.State

	err := rs.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return ErrNotFound
		}
		st, err := decodeState(data)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		st.Version++

		fields, err := encodeState(st)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, gameExpiration)
			if st.Session.Status == game.StatusFinished {
				pipe.SRem(ctx, activeGamesKey, sessionID)
			} else {
				pipe.SAdd(ctx, activeGamesKey, sessionID)
			}
			return nil
		})
		if err != nil {
			return err
		}
		committed = st
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// Delete 删除会话及玩家索引
func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	st, err := rs.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	keys := []string{gameKey(sessionID)}
	for _, p := range st.Players {
		keys = append(keys, playerKey(p.ID))
	}

	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.SRem(ctx, activeGamesKey, sessionID)
	_, err = pipe.Exec(ctx)
	return err
}

// SessionOf 根据玩家 ID 找到会话
func (rs *RedisStore) SessionOf(ctx context.Context, playerID string) (string, error) {
	id, err := rs.client.Get(ctx, playerKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return id, err
}

// ActiveSessions 返回未结束的会话，顺带清理已过期的索引
func (rs *RedisStore) ActiveSessions(ctx context.Context) ([]string, error) {
	ids, err := rs.client.SMembers(ctx, activeGamesKey).Result()
	if err != nil {
		return nil, err
	}

	active := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := rs.client.Exists(ctx, gameKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			if err := rs.client.SRem(ctx, activeGamesKey, id).Err(); err != nil {
				log.Warn().Err(err).Str("session", id).Msg("remove expired session from active set")
			}
			continue
		}
		active = append(active, id)
	}
	sort.Strings(active)
	return active, nil
}

// Close 关闭 Redis 连接
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

// --- 编解码 ---

func encodeState(st *game.State) (map[string]any, error) {
	records := map[string]any{
		fieldSession: st.Session,
		fieldRooms:   st.Rooms,
		fieldDoors:   st.Doors,
		fieldPlayers: st.Players,
		fieldChoices: st.Choices,
		fieldCards:   st.Cards,
		fieldEffects: st.Effects,
	}
	fields := make(map[string]any, len(records)+1)
	for name, v := range records {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("序列化%s失败: %w", name, err)
		}
		fields[name] = string(data)
	}
	fields[fieldVersion] = st.Version
	return fields, nil
}

func decodeState(data map[string]string) (*game.State, error) {
	st := &game.State{}
	version, err := strconv.ParseInt(data[fieldVersion], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version field: %w", err)
	}
	st.Version = version

	targets := map[string]any{
		fieldSession: &st.Session,
		fieldRooms:   &st.Rooms,
		fieldDoors:   &st.Doors,
		fieldPlayers: &st.Players,
		fieldChoices: &st.Choices,
		fieldCards:   &st.Cards,
		fieldEffects: &st.Effects,
	}
	for name, target := range targets {
		raw, ok := data[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), target); err != nil {
			return nil, fmt.Errorf("反序列化%s失败: %w", name, err)
		}
	}
	return st, nil
}
