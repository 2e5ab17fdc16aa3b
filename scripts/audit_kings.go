package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Audits the king_of_rooms table against the tip ledger. A king row is
// stale when its reign started before the rolling window, and inconsistent
// when its recorded total was never backed by actual tips. Run with -fix to
// delete stale rows. Usage: go run scripts/audit_kings.go [-fix]

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	fix := len(os.Args) > 1 && os.Args[1] == "-fix"

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	// Stale reigns: started before the rolling 24h window
	rows, err := db.Query(`
		SELECT k.stream_id, k.user_id, k.total_tokens, k.created_at
		FROM king_of_rooms k
		WHERE k.created_at < NOW() - INTERVAL '24 hours'
		ORDER BY k.created_at
	`)
	if err != nil {
		log.Fatal("Failed to query stale kings:", err)
	}
	defer rows.Close()

	stale := 0
	for rows.Next() {
		var streamID, userID uint
		var total int64
		var createdAt string
		if err := rows.Scan(&streamID, &userID, &total, &createdAt); err != nil {
			log.Fatal("Failed to scan row:", err)
		}
		fmt.Printf("stale: stream=%d user=%d total=%d since=%s\n", streamID, userID, total, createdAt)
		stale++
	}
	if err := rows.Err(); err != nil {
		log.Fatal("Row iteration failed:", err)
	}
	fmt.Printf("%d stale king rows\n", stale)

	// Inconsistent reigns: the recorded total exceeds everything the user has
	// ever tipped in that room. A reign total can legitimately exceed the
	// current window sum (tips age out) but never the all-time sum.
	inconsistent := 0
	inconsRows, err := db.Query(`
		SELECT k.stream_id, k.user_id, k.total_tokens,
		       COALESCE((
		           SELECT SUM(t.amount) FROM tips t
		           WHERE t.stream_id = k.stream_id AND t.sender_id = k.user_id
		       ), 0) AS lifetime
		FROM king_of_rooms k
	`)
	if err != nil {
		log.Fatal("Failed to query king totals:", err)
	}
	defer inconsRows.Close()

	for inconsRows.Next() {
		var streamID, userID uint
		var total, lifetime int64
		if err := inconsRows.Scan(&streamID, &userID, &total, &lifetime); err != nil {
			log.Fatal("Failed to scan row:", err)
		}
		if total > lifetime {
			fmt.Printf("inconsistent: stream=%d user=%d recorded=%d lifetime=%d\n",
				streamID, userID, total, lifetime)
			inconsistent++
		}
	}
	if err := inconsRows.Err(); err != nil {
		log.Fatal("Row iteration failed:", err)
	}
	fmt.Printf("%d inconsistent king rows\n", inconsistent)

	if fix {
		result, err := db.Exec(`
			DELETE FROM king_of_rooms
			WHERE created_at < NOW() - INTERVAL '24 hours'
		`)
		if err != nil {
			log.Fatal("Failed to delete stale kings:", err)
		}
		deleted, _ := result.RowsAffected()
		fmt.Printf("deleted %d stale king rows\n", deleted)
	}
}
