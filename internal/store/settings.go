package store

import (
	"database/sql"
	"strconv"
	"time"
)

// SetSetting stores a key/value pair.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	return err
}

// Setting returns the value for key, or "" if unset.
func (db *DB) Setting(key string) (string, error) {
	var v string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// CompanyID returns the persisted tenant id, or 0 if none was saved.
func (db *DB) CompanyID() (int64, error) {
	v, err := db.Setting(KeyCompanyID)
	if err != nil || v == "" {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// SetCompanyID persists the tenant id.
func (db *DB) SetCompanyID(id int64) error {
	return db.SetSetting(KeyCompanyID, strconv.FormatInt(id, 10))
}
