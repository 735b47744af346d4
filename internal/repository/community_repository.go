package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/anistark/crunchythread/internal/models"
	"github.com/anistark/crunchythread/internal/searchutil"
)

type CommunityRepository struct {
	db *sql.DB
}

func NewCommunityRepository(db *sql.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// CommunitiesFor returns the communities mapped to title, in their
// configured order. Unknown titles map to an empty list.
func (r *CommunityRepository) CommunitiesFor(ctx context.Context, title string) ([]string, error) {
	keys := searchutil.LookupKeys(title)
	if len(keys) == 0 {
		return []string{}, nil
	}

	showID, err := r.resolveShowID(ctx, keys)
	if err != nil {
		return nil, err
	}
	if showID == 0 {
		return []string{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT community
		FROM show_communities
		WHERE show_id = ?
		ORDER BY position ASC, community ASC
	`, showID)
	if err != nil {
		return nil, fmt.Errorf("list show communities: %w", err)
	}
	defer rows.Close()

	communities := make([]string, 0)
	for rows.Next() {
		var community string
		if err := rows.Scan(&community); err != nil {
			return nil, fmt.Errorf("scan community: %w", err)
		}
		communities = append(communities, community)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate communities: %w", err)
	}

	return communities, nil
}

// resolveShowID tries keys in order; a title match beats an alias match
// for the same key.
func (r *CommunityRepository) resolveShowID(ctx context.Context, keys []string) (int64, error) {
	placeholders := sqlPlaceholders(len(keys))
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key)
	}
	for _, key := range keys {
		args = append(args, key)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT title_key, id, 0 AS via_alias FROM shows WHERE title_key IN (`+placeholders+`)
		UNION ALL
		SELECT alias_key, show_id, 1 AS via_alias FROM show_aliases WHERE alias_key IN (`+placeholders+`)
		ORDER BY via_alias ASC
	`, args...)
	if err != nil {
		return 0, fmt.Errorf("resolve show: %w", err)
	}
	defer rows.Close()

	found := make(map[string]int64, len(keys))
	for rows.Next() {
		var key string
		var id int64
		var viaAlias int
		if err := rows.Scan(&key, &id, &viaAlias); err != nil {
			return 0, fmt.Errorf("scan show match: %w", err)
		}
		if _, exists := found[key]; !exists {
			found[key] = id
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate show matches: %w", err)
	}

	for _, key := range keys {
		if id, ok := found[key]; ok {
			return id, nil
		}
	}
	return 0, nil
}

// Upsert stores one mapping read from a mapping file, replacing its aliases
// and communities. A seeded show with the same title becomes file-owned.
func (r *CommunityRepository) Upsert(mapping models.CommunityMapping) error {
	title := strings.TrimSpace(mapping.Title)
	titleKey := searchutil.Normalize(title)
	if titleKey == "" {
		return fmt.Errorf("title is required")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO shows (title, title_key, source)
		VALUES (?, ?, ?)
		ON CONFLICT(title_key) DO UPDATE SET
			title = excluded.title,
			source = excluded.source,
			updated_at = CURRENT_TIMESTAMP
	`, title, titleKey, models.MappingSourceFile); err != nil {
		tx.Rollback()
		return fmt.Errorf("upsert show %s: %w", title, err)
	}

	var showID int64
	if err := tx.QueryRow(`SELECT id FROM shows WHERE title_key = ?`, titleKey).Scan(&showID); err != nil {
		tx.Rollback()
		return fmt.Errorf("load show id %s: %w", title, err)
	}

	if _, err := tx.Exec(`DELETE FROM show_aliases WHERE show_id = ?`, showID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear aliases %s: %w", title, err)
	}
	for _, alias := range mapping.Aliases {
		aliasKey := searchutil.Normalize(alias)
		if aliasKey == "" || aliasKey == titleKey {
			continue
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO show_aliases (alias_key, show_id, alias)
			VALUES (?, ?, ?)
		`, aliasKey, showID, strings.TrimSpace(alias)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert alias %s: %w", alias, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM show_communities WHERE show_id = ?`, showID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear communities %s: %w", title, err)
	}
	for position, community := range mapping.Communities {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO show_communities (show_id, community, position)
			VALUES (?, ?, ?)
		`, showID, community, position); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert community %s: %w", community, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}

	return nil
}

// PruneFileMappings deletes file-owned shows whose title is not in titles.
// Seeded shows are never touched.
func (r *CommunityRepository) PruneFileMappings(titles []string) (int, error) {
	keep := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		if key := searchutil.Normalize(title); key != "" {
			keep[key] = struct{}{}
		}
	}

	rows, err := r.db.Query(`SELECT id, title_key FROM shows WHERE source = ?`, models.MappingSourceFile)
	if err != nil {
		return 0, fmt.Errorf("list file mappings: %w", err)
	}
	stale := make([]any, 0)
	for rows.Next() {
		var id int64
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan file mapping: %w", err)
		}
		if _, ok := keep[key]; !ok {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterate file mappings: %w", err)
	}
	rows.Close()

	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}

	placeholders := sqlPlaceholders(len(stale))
	for _, statement := range []string{
		`DELETE FROM show_aliases WHERE show_id IN (` + placeholders + `)`,
		`DELETE FROM show_communities WHERE show_id IN (` + placeholders + `)`,
		`DELETE FROM shows WHERE id IN (` + placeholders + `)`,
	} {
		if _, err := tx.Exec(statement, stale...); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("prune file mappings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune tx: %w", err)
	}

	return len(stale), nil
}

func (r *CommunityRepository) List() ([]models.CommunityMapping, error) {
	rows, err := r.db.Query(`
		SELECT id, title, source, created_at, updated_at
		FROM shows
		ORDER BY title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	items := make([]models.CommunityMapping, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var item models.CommunityMapping
		if err := rows.Scan(&item.ID, &item.Title, &item.Source, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		item.Communities = []string{}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shows: %w", err)
	}

	aliasRows, err := r.db.Query(`SELECT show_id, alias FROM show_aliases ORDER BY alias ASC`)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer aliasRows.Close()
	for aliasRows.Next() {
		var showID int64
		var alias string
		if err := aliasRows.Scan(&showID, &alias); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		if position, ok := index[showID]; ok {
			items[position].Aliases = append(items[position].Aliases, alias)
		}
	}
	if err := aliasRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aliases: %w", err)
	}

	communityRows, err := r.db.Query(`SELECT show_id, community FROM show_communities ORDER BY show_id ASC, position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	defer communityRows.Close()
	for communityRows.Next() {
		var showID int64
		var community string
		if err := communityRows.Scan(&showID, &community); err != nil {
			return nil, fmt.Errorf("scan community: %w", err)
		}
		if position, ok := index[showID]; ok {
			items[position].Communities = append(items[position].Communities, community)
		}
	}
	if err := communityRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate communities: %w", err)
	}

	return items, nil
}
