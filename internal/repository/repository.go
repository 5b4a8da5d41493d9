// Package repository holds the SQL for every table. Repositories accept a
// database.DBTX so the same code runs on the pool or inside a transaction.
package repository

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// nullIfEmpty maps "" to SQL NULL for nullable unique columns
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
