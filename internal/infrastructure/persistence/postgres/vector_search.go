package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/domain/chat"
	"github.com/handsapp/backend/internal/ports/outbound"
)

// VectorSearchRepository runs pgvector similarity search through the
// match_recipes SQL function.
type VectorSearchRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewVectorSearchRepository creates a new vector search repository
func NewVectorSearchRepository(pool *pgxpool.Pool, logger *zap.Logger) outbound.VectorSearchRepository {
	return &VectorSearchRepository{
		pool:   pool,
		logger: logger.Named("vector-search"),
	}
}

// MatchRecipes returns up to count candidates ranked by similarity to the
// query embedding.
func (r *VectorSearchRepository) MatchRecipes(ctx context.Context, queryEmbedding []float32, count int) ([]chat.Candidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, caption, image FROM match_recipes($1::vector, $2)`,
		vectorLiteral(queryEmbedding), count,
	)
	if err != nil {
		return nil, fmt.Errorf("match_recipes query failed: %w", err)
	}
	defer rows.Close()

	var candidates []chat.Candidate
	for rows.Next() {
		var c chat.Candidate
		if err := rows.Scan(&c.ID, &c.Title, &c.Caption, &c.Image); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match_recipes rows failed: %w", err)
	}

	r.logger.Debug("similarity search complete",
		zap.Int("requested", count),
		zap.Int("returned", len(candidates)),
	)
	return candidates, nil
}

// vectorLiteral renders an embedding in pgvector's input syntax.
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
