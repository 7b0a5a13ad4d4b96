package testutil

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/auth"
	"github.com/ariefcatur/go-custom-goods/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/crypto/bcrypt"
)

// MemCache is an in-memory cache with the redisx.Cache method set. TTLs are
// recorded but never expire.
type MemCache struct {
	mu   sync.Mutex
	data map[string][]byte
	TTLs map[string]time.Duration
}

func NewMemCache() *MemCache {
	return &MemCache{data: map[string][]byte{}, TTLs: map[string]time.Duration{}}
}

func (c *MemCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	return b, ok
}

func (c *MemCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]byte(nil), value...)
	c.TTLs[key] = ttl
	return nil
}

func (c *MemCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(string(c.data[key]), 10, 64)
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (c *MemCache) Has(key string) bool {
	_, ok := c.Get(context.Background(), key)
	return ok
}

// HasCurrent reports whether key is cached under the current generation of
// group.
func (c *MemCache) HasCurrent(group, key string) bool {
	gen := redisx.Generation(context.Background(), c, group)
	return c.Has(redisx.VersionKey(key, gen))
}

// Publisher records published messages.
type Publisher struct {
	mu       sync.Mutex
	Messages []kafkago.Message
}

func (p *Publisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = append(p.Messages, kafkago.Message{Key: key, Value: value, Headers: headers})
}

func (p *Publisher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Messages)
}

// Denylist is an in-memory auth.Revoker.
type Denylist struct {
	mu      sync.Mutex
	Revoked map[string]time.Duration
}

func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Revoked == nil {
		d.Revoked = map[string]time.Duration{}
	}
	d.Revoked[tokenID] = ttl
	return nil
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.Revoked[tokenID]
	return ok, nil
}

// Deduper is an in-memory notify.Deduper.
type Deduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *Deduper) Claim(ctx context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

// AdminStore keeps admin credentials in memory.
type AdminStore struct {
	mu     sync.Mutex
	admins map[string]auth.Credential
	nextID int
	Err    error
}

// NewAdminStore seeds one admin, hashing password at the minimum bcrypt
// cost to keep tests fast.
func NewAdminStore(name, password string) *AdminStore {
	s := &AdminStore{admins: map[string]auth.Credential{}, nextID: 1}
	if name != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		_, _ = s.SaveAdmin(context.Background(), name, string(hash))
	}
	return s
}

func (s *AdminStore) FindAdmin(ctx context.Context, name string) (auth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return auth.Credential{}, s.Err
	}
	c, ok := s.admins[name]
	if !ok {
		return auth.Credential{}, auth.ErrNoAdmin
	}
	return c, nil
}

func (s *AdminStore) SaveAdmin(ctx context.Context, name, passwordHash string) (auth.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return auth.Admin{}, s.Err
	}
	c, ok := s.admins[name]
	if !ok {
		c = auth.Credential{Admin: auth.Admin{ID: s.nextID, Name: name}}
		s.nextID++
	}
	c.PasswordHash = passwordHash
	s.admins[name] = c
	return c.Admin, nil
}

var _ auth.Store = (*AdminStore)(nil)
var _ auth.Revoker = (*Denylist)(nil)
