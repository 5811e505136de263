package editor

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is the editing pointer of one owner: which node is open and the
// generation it was opened under. Generation grows on every Open.
type State struct {
	NodeID     string `json:"node_id"`
	Generation int64  `json:"generation"`
}

// Active reports whether a node is open for editing.
func (s State) Active() bool {
	return s.NodeID != ""
}

// StateStore keeps the editing pointer for each owner.
type StateStore interface {
	Activate(ctx context.Context, ownerID, nodeID string) (State, error)
	Deactivate(ctx context.Context, ownerID string) error
	Current(ctx context.Context, ownerID string) (State, error)
}

// MemoryState keeps editing pointers in process memory.
type MemoryState struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryState() *MemoryState {
	return &MemoryState{states: make(map[string]State)}
}

func (m *MemoryState) Activate(ctx context.Context, ownerID, nodeID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State{NodeID: nodeID, Generation: m.states[ownerID].Generation + 1}
	m.states[ownerID] = st
	return st, nil
}

func (m *MemoryState) Deactivate(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.states[ownerID]
	st.NodeID = ""
	m.states[ownerID] = st
	return nil
}

func (m *MemoryState) Current(ctx context.Context, ownerID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[ownerID], nil
}

// RedisState keeps editing pointers in Redis so every API instance reads the
// same open node id and generation. The canvas itself is per process: Open,
// Edit and Rewrite on an instance still need that instance to have loaded the
// owner's canvas.
type RedisState struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisState connects to redisURL and checks the connection.
func NewRedisState(redisURL string) (*RedisState, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStateWithClient(client), nil
}

// NewRedisStateWithClient wraps an existing client.
func NewRedisStateWithClient(client *redis.Client) *RedisState {
	return &RedisState{
		client: client,
		prefix: "editor:",
		ttl:    24 * time.Hour,
	}
}

func (r *RedisState) key(ownerID string) string {
	return r.prefix + ownerID
}

func (r *RedisState) genKey(ownerID string) string {
	return r.prefix + ownerID + ":gen"
}

func (r *RedisState) Activate(ctx context.Context, ownerID, nodeID string) (State, error) {
	gen, err := r.client.Incr(ctx, r.genKey(ownerID)).Result()
	if err != nil {
		return State{}, fmt.Errorf("bump editor generation: %w", err)
	}

	key := r.key(ownerID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "node", nodeID, "gen", gen)
		pipe.Expire(ctx, key, r.ttl)
		pipe.Expire(ctx, r.genKey(ownerID), r.ttl)
		return nil
	})
	if err != nil {
		return State{}, fmt.Errorf("save editor state: %w", err)
	}
	return State{NodeID: nodeID, Generation: gen}, nil
}

func (r *RedisState) Deactivate(ctx context.Context, ownerID string) error {
	if err := r.client.HDel(ctx, r.key(ownerID), "node").Err(); err != nil {
		return fmt.Errorf("clear editor state: %w", err)
	}
	return nil
}

func (r *RedisState) Current(ctx context.Context, ownerID string) (State, error) {
	fields, err := r.client.HGetAll(ctx, r.key(ownerID)).Result()
	if err != nil {
		return State{}, fmt.Errorf("lookup editor state: %w", err)
	}

	st := State{NodeID: fields["node"]}
	if raw := fields["gen"]; raw != "" {
		gen, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return State{}, fmt.Errorf("parse editor generation: %w", err)
		}
		st.Generation = gen
	}
	return st, nil
}

// Close closes the Redis connection.
func (r *RedisState) Close() error {
	return r.client.Close()
}

// Ping checks if Redis is reachable.
func (r *RedisState) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
