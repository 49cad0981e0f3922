// Package keystore is a minimal, sqlite-backed key-name inventory: the
// iterable of candidate key names that lvs.Checker.Suggest needs but
// does not itself implement, since the keychain is an external
// collaborator. It does not touch key material or certificates, only
// names, reflecting that Suggest never verifies a candidate's own
// signer.
package keystore

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/apex/log"
	"github.com/named-data/lvs/ndn"
	"github.com/pkg/errors"
)

// Store is a table of known key names, ordered by insertion (rowid),
// which is the order lvs.Checker.Suggest iterates.
type Store struct {
	db *sql.DB
}

// Open creates (if necessary) and opens a key-name inventory at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "keystore: open")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "keystore: migrate")
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS keys (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
`

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add records a key name, ignoring the insert if it is already present.
func (s *Store) Add(name ndn.Name) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO keys(name) VALUES(?)", name.String())
	if err != nil {
		return errors.Wrap(err, "keystore: add")
	}
	return nil
}

// Remove deletes a key name from the inventory, if present.
func (s *Store) Remove(name ndn.Name) error {
	_, err := s.db.Exec("DELETE FROM keys WHERE name = ?", name.String())
	if err != nil {
		return errors.Wrap(err, "keystore: remove")
	}
	return nil
}

// Names returns every known key name, in insertion order — the order
// lvs.Checker.Suggest will try them in.
func (s *Store) Names() ([]ndn.Name, error) {
	rows, err := s.db.Query("SELECT name FROM keys ORDER BY id ASC")
	if err != nil {
		return nil, errors.Wrap(err, "keystore: query")
	}
	defer rows.Close()

	var out []ndn.Name
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "keystore: scan")
		}
		n, err := ndn.ParseName(raw)
		if err != nil {
			log.WithField("module", "keystore").Warnf("skipping unparseable key name %q: %v", raw, err)
			continue
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
