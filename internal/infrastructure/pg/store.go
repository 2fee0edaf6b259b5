package pg

import (
	"context"
	"errors"

	"price-registry/internal/domain"
	"price-registry/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Store persists record fields as rows of registry_entries keyed by (tag, pair).
type Store struct{ db *DB }

func NewStore(db *DB) *Store { return &Store{db: db} }

func (s *Store) q(ctx context.Context) querier {
	if tx := txFromCtx(ctx); tx != nil {
		return tx
	}
	return s.db.Pool
}

func (s *Store) Get(ctx context.Context, key domain.Key) (string, bool, error) {
	const q = `SELECT value FROM registry_entries WHERE tag=$1 AND pair=$2`
	var v string
	err := s.q(ctx).QueryRow(ctx, q, string(key.Tag), string(key.Pair)).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		logx.WithFields(ctx).Error("sql.query_failed",
			zap.String("repo", "registry_entries"),
			zap.String("operation", "Get"),
			zap.String("key", key.String()),
			zap.Error(err),
		)
		return "", false, err
	}
	return v, true, nil
}

// GetMany reads all keys with one statement, so the rows come from a single snapshot.
func (s *Store) GetMany(ctx context.Context, keys ...domain.Key) (map[domain.Key]string, error) {
	out := make(map[domain.Key]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	want := make(map[domain.Key]struct{}, len(keys))
	tags := make([]string, 0, len(keys))
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
		tags = append(tags, string(k.Tag))
		pairs = append(pairs, string(k.Pair))
	}
	const q = `SELECT tag, pair, value FROM registry_entries WHERE tag = ANY($1) AND pair = ANY($2)`
	rows, err := s.q(ctx).Query(ctx, q, tags, pairs)
	if err != nil {
		logx.WithFields(ctx).Error("sql.query_failed",
			zap.String("repo", "registry_entries"),
			zap.String("operation", "GetMany"),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tag, pair, value string
		if err := rows.Scan(&tag, &pair, &value); err != nil {
			return nil, err
		}
		k := domain.Key{Tag: domain.FieldTag(tag), Pair: domain.Pair(pair)}
		if _, ok := want[k]; ok {
			out[k] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, key domain.Key, value string) error {
	const up = `
        INSERT INTO registry_entries(tag, pair, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (tag, pair) DO UPDATE
          SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`
	log := logx.WithFields(ctx).With(
		zap.String("repo", "registry_entries"),
		zap.String("operation", "Set"),
		zap.String("key", key.String()),
	)
	tag, err := s.q(ctx).Exec(ctx, up, string(key.Tag), string(key.Pair), value)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return err
	}
	log.Debug("sql.exec_success", zap.Int64("rows_affected", tag.RowsAffected()))
	return nil
}
