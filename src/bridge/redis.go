package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const writeTimeout = 2 * time.Second

// presenceOp is one queued write. An empty channel clears the user.
type presenceOp struct {
	userID  string
	channel string
}

// RedisPresence mirrors channel membership into a Redis hash. Writes are
// queued and applied by a single goroutine so the hub never waits on Redis.
type RedisPresence struct {
	client *redis.Client
	key    string
	logger zerolog.Logger

	ops    chan presenceOp
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	active bool
}

// NewRedisPresence creates a mirror writing to cfg.PresenceKey().
func NewRedisPresence(cfg *RedisConfig, logger zerolog.Logger) *RedisPresence {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithCancel(context.Background())
	size := cfg.QueueSize
	if size <= 0 {
		size = 1024
	}

	return &RedisPresence{
		client: client,
		key:    cfg.PresenceKey(),
		logger: logger.With().Str("component", "redis-presence").Logger(),
		ops:    make(chan presenceOp, size),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start pings Redis, clears the presence hash and begins applying writes.
// Presence is rebuilt from scratch on every relay start.
func (p *RedisPresence) Start() error {
	if err := p.client.Ping(p.ctx).Err(); err != nil {
		return err
	}
	if err := p.client.Del(p.ctx, p.key).Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.active = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()

	p.logger.Info().Str("key", p.key).Msg("redis presence mirror started")
	return nil
}

// SetPresence records userID as a member of channelID.
func (p *RedisPresence) SetPresence(userID, channelID string) {
	p.enqueue(presenceOp{userID: userID, channel: channelID})
}

// ClearPresence removes userID from the mirror.
func (p *RedisPresence) ClearPresence(userID string) {
	p.enqueue(presenceOp{userID: userID})
}

// Snapshot reads the mirrored presence hash.
func (p *RedisPresence) Snapshot(ctx context.Context) (map[string]string, error) {
	return p.client.HGetAll(ctx, p.key).Result()
}

// Stop halts the writer and closes the Redis connection.
func (p *RedisPresence) Stop() error {
	p.mu.Lock()
	p.active = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	return p.client.Close()
}

// Available reports whether the mirror is connected.
func (p *RedisPresence) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// enqueue never blocks; writes are dropped while the mirror is down or
// the queue is full.
func (p *RedisPresence) enqueue(op presenceOp) bool {
	if !p.Available() {
		return false
	}
	select {
	case p.ops <- op:
		return true
	default:
		p.logger.Warn().Str("user_id", op.userID).Msg("presence queue full, dropping")
		return false
	}
}

func (p *RedisPresence) run() {
	defer p.wg.Done()
	for {
		select {
		case op := <-p.ops:
			p.apply(op)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *RedisPresence) apply(op presenceOp) {
	ctx, cancel := context.WithTimeout(p.ctx, writeTimeout)
	defer cancel()

	var err error
	if op.channel == "" {
		err = p.client.HDel(ctx, p.key, op.userID).Err()
	} else {
		err = p.client.HSet(ctx, p.key, op.userID, op.channel).Err()
	}
	if err != nil {
		p.logger.Error().Err(err).Str("user_id", op.userID).Msg("presence write failed")
	}
}
