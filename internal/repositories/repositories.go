// package repositories provides the SQLite persistence layer behind the reference contact store.
package repositories

import (
	"database/sql"
	"fmt"
	"strings"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NextPosition returns the position one past the current last row of table.
//
// Run it inside the transaction that inserts the row so two inserts cannot claim the same slot.
func NextPosition(q querier, table string) (int, error) {
	var last sql.NullInt64
	if err := q.QueryRow(fmt.Sprintf("SELECT MAX(position) FROM %s", table)).Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to read last position: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return int(last.Int64) + 1, nil
}

// likePattern builds a LIKE pattern matching s anywhere, with wildcards in s escaped by '\'.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
