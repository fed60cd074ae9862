package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eyra/internal/language"
	"eyra/internal/textutil"
)

// CreateCollection inserts a new collection. The name is whitespace-collapsed
// and title-cased so near-duplicate spellings land on the same row; the
// language input is canonicalized to a BCP 47 tag.
func (s *Store) CreateCollection(ctx context.Context, name, languageTag string, isDev, verify bool) (*Collection, error) {
	name = textutil.NormalizeCollectionName(name)
	if name == "" {
		return nil, errors.New("collection name is required")
	}
	tag, err := language.NormalizeTag(languageTag)
	if err != nil {
		return nil, err
	}
	now := timestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO collections (name, language, is_dev, verify, created_at) VALUES (?, ?, ?, ?, ?)`,
		name,
		tag,
		boolToInt(isDev),
		boolToInt(verify),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert collection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCollection(ctx, id)
}

// GetCollection fetches a collection by identifier. Returns nil when absent.
func (s *Store) GetCollection(ctx context.Context, id int64) (*Collection, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, name, language, is_dev, verify, created_at FROM collections WHERE id = ?`,
		id,
	)
	collection, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return collection, nil
}

// ListCollections returns all collections ordered by creation time.
func (s *Store) ListCollections(ctx context.Context) ([]*Collection, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, language, is_dev, verify, created_at FROM collections ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var collections []*Collection
	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}
	return collections, rows.Err()
}

// CreateToken inserts a prompt token, optionally bound to a collection.
func (s *Store) CreateToken(ctx context.Context, collectionID *int64, text, fname string) (*Token, error) {
	now := timestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO tokens (collection_id, text, fname, created_at) VALUES (?, ?, ?, ?)`,
		nullableInt64(collectionID),
		text,
		fname,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert token: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetToken(ctx, id)
}

// GetToken fetches a token by identifier. Returns nil when absent.
func (s *Store) GetToken(ctx context.Context, id int64) (*Token, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, collection_id, text, fname, created_at FROM tokens WHERE id = ?`,
		id,
	)
	var (
		token        Token
		collectionID sql.NullInt64
		createdRaw   string
	)
	err := row.Scan(&token.ID, &collectionID, &token.Text, &token.Fname, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	if collectionID.Valid {
		token.CollectionID = &collectionID.Int64
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		token.CreatedAt = created
	}
	return &token, nil
}

func scanCollection(scanner interface{ Scan(dest ...any) error }) (*Collection, error) {
	var (
		collection Collection
		isDev      int
		verify     int
		createdRaw string
	)
	if err := scanner.Scan(&collection.ID, &collection.Name, &collection.Language, &isDev, &verify, &createdRaw); err != nil {
		return nil, err
	}
	collection.IsDev = isDev != 0
	collection.Verify = verify != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		collection.CreatedAt = created
	}
	return &collection, nil
}
