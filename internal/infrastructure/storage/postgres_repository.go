package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/ports"
)

// PostgresRepository persists harvested articles. Rows are keyed by
// (source, article_id); re-running a harvest upserts, so cross-run duplicates
// simply refresh the existing row.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RunStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRun upserts every record of the finalized run.
func (r *PostgresRepository) SaveRun(ctx context.Context, records []domain.ArticleRecord) error {
	if r.db == nil || len(records) == 0 {
		return nil
	}

	for _, record := range records {
		var published sql.NullTime
		if !record.Published.IsZero() {
			published = sql.NullTime{Time: record.Published, Valid: true}
		}

		query, args, err := r.builder.
			Insert("articles").
			Columns("source", "article_id", "title", "summary", "authors", "published", "url", "pdf_url", "pdf_path").
			Values(
				record.Source,
				record.ArticleID,
				record.Title,
				record.Summary,
				pq.StringArray(record.Authors),
				published,
				record.URL,
				record.PDFURL,
				record.PDFPath,
			).
			Suffix(`ON CONFLICT (source, article_id) DO UPDATE
                SET title = EXCLUDED.title,
                    summary = EXCLUDED.summary,
                    authors = EXCLUDED.authors,
                    published = EXCLUDED.published,
                    url = EXCLUDED.url,
                    pdf_url = EXCLUDED.pdf_url,
                    pdf_path = EXCLUDED.pdf_path,
                    updated_at = NOW()`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert article %s/%s: %w", record.Source, record.ArticleID, err)
		}
	}

	return nil
}

// KnownIDs returns which of the given keys already exist in storage, letting
// callers report how many articles of a run were new.
func (r *PostgresRepository) KnownIDs(ctx context.Context, keys []domain.Key) (map[domain.Key]bool, error) {
	if r.db == nil || len(keys) == 0 {
		return map[domain.Key]bool{}, nil
	}

	query, args, err := r.knownIDsQuery(keys)
	if err != nil {
		return nil, fmt.Errorf("build lookup: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query known ids: %w", err)
	}
	defer rows.Close()

	known := map[domain.Key]bool{}
	for rows.Next() {
		var key domain.Key
		if err := rows.Scan(&key.Source, &key.ArticleID); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		known[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return known, nil
}

// knownIDsQuery matches rows against the keys pairwise: the arrays are zipped
// by unnest, so (arxiv, x) does not match a row (arxiv, y) even when both x
// and y appear somewhere in the key set.
func (r *PostgresRepository) knownIDsQuery(keys []domain.Key) (string, []interface{}, error) {
	sources := make([]string, len(keys))
	ids := make([]string, len(keys))
	for i, key := range keys {
		sources[i] = key.Source
		ids[i] = key.ArticleID
	}

	return r.builder.
		Select("source", "article_id").
		From("articles").
		Where(sq.Expr(
			"(source, article_id) IN (SELECT * FROM unnest(?::text[], ?::text[]))",
			pq.StringArray(sources), pq.StringArray(ids),
		)).
		ToSql()
}
