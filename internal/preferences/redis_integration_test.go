//go:build integration

package preferences

import (
	"context"
	"sync"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisStore_Integration(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(startRedis(t), "nexus:test:")

	v, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	var wg sync.WaitGroup
	subs := NewSubmissionStore(store)
	for _, id := range []string{"sub-1", "sub-2", "sub-3", "sub-4"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, subs.SaveSubmission(ctx, &domain.Paper{ID: id}))
		}()
	}
	wg.Wait()

	list, err := subs.ListSubmissions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)
}
