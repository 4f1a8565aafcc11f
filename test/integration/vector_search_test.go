//go:build integration

package integration

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/handsapp/backend/internal/infrastructure/persistence/migrations"
	"github.com/handsapp/backend/internal/infrastructure/persistence/postgres"
)

const embeddingDim = 1536

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "hands_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/hands_test", host, port.Port())

	var pool *pgxpool.Pool
	require.Eventually(t, func() bool {
		pool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			return false
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return false
		}
		return true
	}, 30*time.Second, time.Second)
	t.Cleanup(pool.Close)

	schema, err := migrations.UpSQL()
	require.NoError(t, err)
	_, err = pool.Exec(ctx, schema)
	require.NoError(t, err)

	return pool
}

// axisEmbedding builds a unit vector pointing along one dimension so cosine
// distance between recipes is exact and predictable.
func axisEmbedding(axis int) []float32 {
	v := make([]float32, embeddingDim)
	v[axis] = 1
	return v
}

func vectorLiteral(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func insertRecipe(t *testing.T, pool *pgxpool.Pool, title string, embedding []float32) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO recipes (id, title, caption, image, embedding) VALUES ($1, $2, $3, $4, $5::vector)`,
		id, title, title+" caption", "https://example.com/"+id+".jpg", vectorLiteral(embedding),
	)
	require.NoError(t, err)
	return id
}

func TestMatchRecipesRanksBySimilarity(t *testing.T) {
	pool := startPostgres(t)
	repo := postgres.NewVectorSearchRepository(pool, zaptest.NewLogger(t))

	nearID := insertRecipe(t, pool, "Garlic Chicken", axisEmbedding(0))
	farID := insertRecipe(t, pool, "Chocolate Cake", axisEmbedding(1))

	// Query vector leans strongly toward axis 0.
	query := make([]float32, embeddingDim)
	query[0] = 0.9
	query[1] = 0.1

	candidates, err := repo.MatchRecipes(context.Background(), query, 8)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, nearID, strings.TrimSpace(candidates[0].ID))
	assert.Equal(t, "Garlic Chicken", candidates[0].Title)
	assert.Equal(t, farID, strings.TrimSpace(candidates[1].ID))
}

func TestMatchRecipesHonorsCount(t *testing.T) {
	pool := startPostgres(t)
	repo := postgres.NewVectorSearchRepository(pool, zaptest.NewLogger(t))

	for i := 0; i < 5; i++ {
		insertRecipe(t, pool, fmt.Sprintf("Recipe %d", i), axisEmbedding(i))
	}

	candidates, err := repo.MatchRecipes(context.Background(), axisEmbedding(0), 3)
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
}

func TestMatchRecipesSkipsRowsWithoutEmbedding(t *testing.T) {
	pool := startPostgres(t)
	repo := postgres.NewVectorSearchRepository(pool, zaptest.NewLogger(t))

	_, err := pool.Exec(context.Background(),
		`INSERT INTO recipes (id, title) VALUES ($1, $2)`,
		uuid.New().String(), "No Embedding Yet",
	)
	require.NoError(t, err)
	insertRecipe(t, pool, "Embedded", axisEmbedding(0))

	candidates, err := repo.MatchRecipes(context.Background(), axisEmbedding(0), 8)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Embedded", candidates[0].Title)
}
