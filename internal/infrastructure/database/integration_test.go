//go:build integration

package database_test

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wekeepgrowing/vipgate/internal/config"
	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/database"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/lock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupPostgres starts a disposable postgres and returns a migrated connection.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "vipgate",
			"POSTGRES_PASSWORD": "vipgate",
			"POSTGRES_DB":       "vipgate",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	port, err := strconv.Atoi(mappedPort.Port())
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Host:         host,
		Port:         port,
		Name:         "vipgate",
		User:         "vipgate",
		Password:     "vipgate",
		SSLMode:      "disable",
		MaxOpenConns: 20,
		MaxIdleConns: 5,
	}

	db, err := database.NewConnection(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, zap.NewNop()))
	// a second run is a no-op
	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return db
}

func TestEntitlementStore_Postgres(t *testing.T) {
	db := setupPostgres(t)
	repos := database.NewRepositories(db, lock.NewKeyedMutex(), zap.NewNop())
	store := repos.Entitlements
	ctx := context.Background()

	id, err := store.CreateOffering(ctx, &entity.Offering{
		Name:         "Gold",
		PriceRef:     "price_gold",
		Description:  "Premium",
		ResourceLink: "https://t.me/+gold",
		Recurring:    true,
	})
	require.NoError(t, err)

	_, err = store.GetOffering(ctx, id+100)
	assert.ErrorIs(t, err, domainErrors.ErrOfferingNotFound)

	t.Run("customer factory runs once under concurrency", func(t *testing.T) {
		var calls int32
		var wg sync.WaitGroup
		results := make([]string, 10)

		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				customerID, err := store.GetOrCreateCustomerMapping(ctx, 42, func(context.Context) (*entity.CustomerMapping, error) {
					n := atomic.AddInt32(&calls, 1)
					return &entity.CustomerMapping{ProviderCustomerID: "cus_" + strconv.Itoa(int(n))}, nil
				})
				assert.NoError(t, err)
				results[i] = customerID
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls)
		for _, r := range results {
			assert.Equal(t, "cus_1", r)
		}

		buyerID, err := store.FindBuyerByExternalCustomerID(ctx, "cus_1")
		require.NoError(t, err)
		assert.Equal(t, int64(42), buyerID)
	})

	t.Run("grant is idempotent", func(t *testing.T) {
		outcome, err := store.RecordGrant(ctx, 42, id)
		require.NoError(t, err)
		assert.Equal(t, entity.GrantCreated, outcome)

		outcome, err = store.RecordGrant(ctx, 42, id)
		require.NoError(t, err)
		assert.Equal(t, entity.GrantAlreadyExists, outcome)

		access, err := store.ListGrantsForBuyer(ctx, 42)
		require.NoError(t, err)
		require.Len(t, access, 1)
		assert.Equal(t, "Gold", access[0].Name)
	})

	t.Run("payment event journal counts redeliveries", func(t *testing.T) {
		first, err := repos.PaymentEvents.Record(ctx, "evt_1", "checkout.session.completed", time.Now())
		require.NoError(t, err)
		assert.True(t, first)

		first, err = repos.PaymentEvents.Record(ctx, "evt_1", "checkout.session.completed", time.Now())
		require.NoError(t, err)
		assert.False(t, first)

		require.NoError(t, repos.PaymentEvents.MarkProcessed(ctx, "evt_1"))
	})

	t.Run("deleting an offering removes its grants", func(t *testing.T) {
		require.NoError(t, store.DeleteOffering(ctx, id))

		access, err := store.ListGrantsForBuyer(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, access)
	})
}
