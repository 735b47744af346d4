package database

import (
	"database/sql"
	"fmt"

	"github.com/anistark/crunchythread/internal/searchutil"
)

type seedMapping struct {
	title       string
	aliases     []string
	communities []string
}

var defaultMappings = []seedMapping{
	{title: "One Piece", communities: []string{"OnePiece", "anime"}},
	{title: "Jujutsu Kaisen", aliases: []string{"JJK"}, communities: []string{"JuJutsuKaisen", "anime"}},
	{title: "Frieren", aliases: []string{"Sousou no Frieren", "Frieren: Beyond Journey's End"}, communities: []string{"Frieren", "anime"}},
	{title: "Solo Leveling", communities: []string{"sololeveling", "anime"}},
	{title: "Dandadan", aliases: []string{"Dan Da Dan"}, communities: []string{"Dandadan", "anime"}},
	{title: "Demon Slayer", aliases: []string{"Kimetsu no Yaiba"}, communities: []string{"KimetsuNoYaiba", "anime"}},
}

// SeedDefaults inserts the built-in mappings. Shows that already exist are
// left untouched so edits from mapping files survive restarts.
func SeedDefaults(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}

	for _, mapping := range defaultMappings {
		res, err := tx.Exec(`
			INSERT OR IGNORE INTO shows (title, title_key)
			VALUES (?, ?)
		`, mapping.title, searchutil.Normalize(mapping.title))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("seed show %s: %w", mapping.title, err)
		}

		inserted, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("seed show %s: %w", mapping.title, err)
		}
		if inserted == 0 {
			continue
		}

		showID, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("seed show id %s: %w", mapping.title, err)
		}

		for _, alias := range mapping.aliases {
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO show_aliases (alias_key, show_id, alias)
				VALUES (?, ?, ?)
			`, searchutil.Normalize(alias), showID, alias); err != nil {
				tx.Rollback()
				return fmt.Errorf("seed alias %s: %w", alias, err)
			}
		}

		for position, community := range mapping.communities {
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO show_communities (show_id, community, position)
				VALUES (?, ?, ?)
			`, showID, community, position); err != nil {
				tx.Rollback()
				return fmt.Errorf("seed community %s: %w", community, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
