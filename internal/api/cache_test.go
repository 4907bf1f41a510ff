package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"virtual_wallet/internal/domain"
	"virtual_wallet/internal/store"
	"virtual_wallet/internal/store/memory"
	"virtual_wallet/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCatalogIsCachedInRedis(t *testing.T) {
	mr, rdb := newRedis(t)
	s := newTestServerWith(t, memory.New(), rdb, nil)

	w := s.do(http.MethodGet, "/items/list", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, mr.Exists(utils.ItemsCacheKey))
	assert.True(t, mr.TTL(utils.ItemsCacheKey) > 0)

	// Later reads are answered from Redis.
	require.NoError(t, mr.Set(utils.ItemsCacheKey, `[{"id":9,"name":"Cached","price":1.5}]`))
	w = s.do(http.MethodGet, "/items/list", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []ItemResponse{{ID: 9, Name: "Cached", Price: 1.5}}, decode[[]ItemResponse](t, w))
}

func TestCatalogServedFromStoreWhenRedisDown(t *testing.T) {
	mr, rdb := newRedis(t)
	s := newTestServerWith(t, memory.New(), rdb, nil)
	mr.Close()

	w := s.do(http.MethodGet, "/items/list", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]ItemResponse](t, w), 5)
}

// stallingUsers holds one FindByID call after it has read the user, until release is closed.
type stallingUsers struct {
	store.Users
	armed   *atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (u stallingUsers) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := u.Users.FindByID(ctx, id)
	if u.armed.CompareAndSwap(true, false) {
		close(u.read)
		<-u.release
	}
	return user, err
}

type stallingStore struct {
	*memory.Store
	users stallingUsers
}

func (s stallingStore) Users() store.Users { return s.users }

func TestBalanceReadRacingSpendIsNotCached(t *testing.T) {
	mr, rdb := newRedis(t)
	mem := memory.New()
	st := stallingStore{Store: mem, users: stallingUsers{
		Users:   mem.Users(),
		armed:   &atomic.Bool{},
		read:    make(chan struct{}),
		release: make(chan struct{}),
	}}
	s := newTestServerWith(t, st, rdb, nil)
	token := s.signup("alice", "secret1")

	st.users.armed.Store(true)
	racing := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/wallet/balance", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		racing <- w
	}()

	<-st.users.read
	w := s.do(http.MethodPost, "/wallet/spend", gin.H{"amount": 30}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 70.0, decode[BalanceResponse](t, w).Balance)
	close(st.users.release)

	stale := <-racing
	require.Equal(t, http.StatusOK, stale.Code)
	assert.Equal(t, 100.0, decode[BalanceResponse](t, stale).Balance)

	w = s.do(http.MethodGet, "/wallet/balance", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 70.0, decode[BalanceResponse](t, w).Balance, "a read that overlapped the spend must not outlive it")
	assert.Empty(t, mr.Keys(), "balances are never written to Redis")
}
