package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	addr := flag.String("addr", "localhost:5432", "server address")
	user := flag.String("user", "isomorphicdb", "connecting user")
	flag.Parse()

	url := fmt.Sprintf("user=%s dbname=test host=%s sslmode=disable", *user, *addr)
	db, err := sql.Open("postgres", url)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := smokeTest(db); err != nil {
		log.Fatal(err)
	}
}

// smokeTest exercises both query flows a libpq client drives: Simple
// Query via Exec/Query, and the Extended Query Protocol via a
// parameterized statement.
func smokeTest(db *sql.DB) error {
	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS shop"); err != nil {
		return err
	}
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS shop.users (id INTEGER, name TEXT, age SMALLINT)"); err != nil {
		return err
	}
	if _, err := db.Exec("INSERT INTO shop.users (id, name, age) VALUES (1, 'ada', 36)"); err != nil {
		return err
	}

	rows, err := db.Query("SELECT id, name, age FROM shop.users WHERE age > $1", 20)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, age int
		var name string
		if err := rows.Scan(&id, &name, &age); err != nil {
			return err
		}
		fmt.Printf("%d\t%s\t%d\n", id, name, age)
	}
	return rows.Err()
}
