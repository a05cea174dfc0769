package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// GetAll returns every registered token.
func (s *TokenStore) GetAll(ctx context.Context) ([]*domain.Token, error) {
	query := `
		SELECT id, name, symbol, decimals, standard, COALESCE(address, ''), token_id
		FROM token
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get tokens: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

func scanTokens(rows pgx.Rows) ([]*domain.Token, error) {
	var tokens []*domain.Token

	for rows.Next() {
		var (
			t        domain.Token
			standard string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Symbol, &t.Decimals, &standard, &t.Address, &t.TokenID); err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		t.Standard = domain.TokenStandard(standard)
		tokens = append(tokens, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}

	return tokens, nil
}

// PoolStore implements storage.PoolStore using PostgreSQL. It resolves token
// references through the token table so callers get fully populated pools.
type PoolStore struct {
	pool   *Pool
	tokens *TokenStore
}

// NewPoolStore creates a new PoolStore.
func NewPoolStore(pool *Pool) *PoolStore {
	return &PoolStore{pool: pool, tokens: NewTokenStore(pool)}
}

// Compile-time interface check.
var _ storage.PoolStore = (*PoolStore)(nil)

// GetAll returns every registered v2 and v3 pool with token metadata resolved.
func (s *PoolStore) GetAll(ctx context.Context) ([]*domain.Pool, error) {
	tokens, err := s.tokens.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Token, len(tokens))
	for _, t := range tokens {
		byID[t.ID] = *t
	}

	pools, err := s.getV2Pools(ctx, byID)
	if err != nil {
		return nil, err
	}

	v3, err := s.getV3Pools(ctx, byID)
	if err != nil {
		return nil, err
	}

	return append(pools, v3...), nil
}

func (s *PoolStore) getV2Pools(ctx context.Context, tokens map[int64]domain.Token) ([]*domain.Pool, error) {
	query := `SELECT address, token_1, token_2, fees, type FROM pool_v2 ORDER BY address ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get v2 pools: %w", err)
	}
	defer rows.Close()

	var pools []*domain.Pool
	for rows.Next() {
		var (
			p                  domain.Pool
			token1ID, token2ID int64
			generation         string
		)
		if err := rows.Scan(&p.Address, &token1ID, &token2ID, &p.Fee, &generation); err != nil {
			return nil, fmt.Errorf("scan v2 pool row: %w", err)
		}
		t1, ok := tokens[token1ID]
		if !ok {
			return nil, fmt.Errorf("pool %s references unknown token %d", p.Address, token1ID)
		}
		t2, ok := tokens[token2ID]
		if !ok {
			return nil, fmt.Errorf("pool %s references unknown token %d", p.Address, token2ID)
		}
		p.Token1 = t1
		p.Token2 = t2
		p.Generation = domain.PoolGeneration(generation)
		pools = append(pools, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate v2 pool rows: %w", err)
	}

	return pools, nil
}

func (s *PoolStore) getV3Pools(ctx context.Context, tokens map[int64]domain.Token) ([]*domain.Pool, error) {
	query := `SELECT address, token_x, token_y, fee_bps FROM pool_v3 ORDER BY address ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get v3 pools: %w", err)
	}
	defer rows.Close()

	var pools []*domain.Pool
	for rows.Next() {
		var (
			p                  domain.Pool
			tokenXID, tokenYID int64
		)
		if err := rows.Scan(&p.Address, &tokenXID, &tokenYID, &p.Fee); err != nil {
			return nil, fmt.Errorf("scan v3 pool row: %w", err)
		}
		tx, ok := tokens[tokenXID]
		if !ok {
			return nil, fmt.Errorf("pool %s references unknown token %d", p.Address, tokenXID)
		}
		ty, ok := tokens[tokenYID]
		if !ok {
			return nil, fmt.Errorf("pool %s references unknown token %d", p.Address, tokenYID)
		}
		p.Token1 = tx
		p.Token2 = ty
		p.Generation = domain.GenV3
		pools = append(pools, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate v3 pool rows: %w", err)
	}

	return pools, nil
}
