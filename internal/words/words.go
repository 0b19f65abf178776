// internal/words/words.go
//
// Level → word lookup for the game engine.
//
// Responsibilities:
//   - Resolve the target word for an exact level match (or report absence).
//   - Import additional levels from a plain-text file at startup.
//   - Report how many levels are available.
//
// Levels file format (LEVELS_FILE):
//   one "<level> <word>" pair per line, blank lines and "#" comments ignored.
//   Words are normalized to uppercase and must be alphabetic.
//
// Constraints:
//   • A level that already has a word is never re-imported.
//   • When storage holds several rows for one level, the first inserted wins.

package words

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

// Lookup resolves the word for a level.
type Lookup interface {
	// WordFor returns the word seeded for level, or ok=false if none exists.
	WordFor(ctx context.Context, level int) (word string, ok bool, err error)
}

// Entry is one level/word pair.
type Entry struct {
	Level int
	Word  string
}

// Store is the SQLite-backed Lookup.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) WordFor(ctx context.Context, level int) (string, bool, error) {
	log.Debug().Int("level", level).Msg("fetching word for level")
	var w string
	err := s.db.QueryRowContext(ctx,
		`SELECT word FROM words WHERE level=? ORDER BY rowid LIMIT 1`, level,
	).Scan(&w)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug().Int("level", level).Msg("no word found for level")
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("word for level %d: %w", level, err)
	}
	return w, true, nil
}

// Levels returns the number of distinct levels with a word.
func (s *Store) Levels(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT level) FROM words`).Scan(&n)
	return n, err
}

// Insert adds entries whose level has no word yet. It returns how many rows
// were written.
func (s *Store) Insert(ctx context.Context, entries []Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, e := range entries {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO words (level, word)
			SELECT ?, ?
			WHERE NOT EXISTS (SELECT 1 FROM words WHERE level=?)`,
			e.Level, e.Word, e.Level,
		)
		if err != nil {
			return 0, fmt.Errorf("insert level %d: %w", e.Level, err)
		}
		n, _ := res.RowsAffected()
		added += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// Import reads a levels file and inserts its new levels.
func (s *Store) Import(ctx context.Context, path string) (int, error) {
	entries, err := readLevelsFile(path)
	if err != nil {
		return 0, err
	}
	n, err := s.Insert(ctx, entries)
	if err != nil {
		return 0, err
	}
	log.Info().Str("file", path).Int("parsed", len(entries)).Int("added", n).Msg("imported levels")
	return n, nil
}

// readLevelsFile loads "<level> <word>" pairs from a file.
func readLevelsFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Entry
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		e, ok, err := parseLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, sc.Err()
}

func parseLine(s string) (Entry, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "#") {
		return Entry{}, false, nil
	}
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Entry{}, false, errors.New("want \"<level> <word>\"")
	}
	level, err := strconv.Atoi(fields[0])
	if err != nil || level < 1 {
		return Entry{}, false, fmt.Errorf("bad level %q", fields[0])
	}
	word := strings.ToUpper(fields[1])
	if !isAlpha(word) {
		return Entry{}, false, fmt.Errorf("bad word %q", fields[1])
	}
	return Entry{Level: level, Word: word}, true, nil
}

// isAlpha reports whether s is all letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
