package pgwire_test

import (
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/lib/pq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/pgwire"
)

func startServer(addr string) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		panic(err)
	}
	srv := pgwire.NewServer(catalog.New())
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go srv.Serve(conn)
	}
}

func openDB(port string) *sql.DB {
	url := fmt.Sprintf("user=isomorphicdb dbname=isomorphicdb port=%s sslmode=disable", port)
	db, err := sql.Open("postgres", url)
	Expect(err).To(BeNil())
	db.SetMaxOpenConns(1)
	return db
}

var _ = Describe("wire protocol", func() {
	It("round-trips DDL, a multi-row INSERT, and a SELECT *", func() {
		port := "28899"
		go startServer(":" + port)
		time.Sleep(10 * time.Millisecond)

		db := openDB(port)
		defer db.Close()

		_, err := db.Exec("CREATE TABLE t (a smallint, b smallint, c smallint)")
		Expect(err).To(BeNil())

		_, err = db.Exec("INSERT INTO t VALUES (1,2,3),(4,5,6),(7,8,9)")
		Expect(err).To(BeNil())

		rows, err := db.Query("SELECT a, b, c FROM t")
		Expect(err).To(BeNil())
		defer rows.Close()

		cols, err := rows.Columns()
		Expect(err).To(BeNil())
		Expect(cols).To(HaveLen(3))

		var got [][3]int
		for rows.Next() {
			var a, b, c int
			Expect(rows.Scan(&a, &b, &c)).To(BeNil())
			got = append(got, [3]int{a, b, c})
		}
		Expect(got).To(Equal([][3]int{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}))
	})

	It("answers a parameterized query via the extended protocol", func() {
		port := "28900"
		go startServer(":" + port)
		time.Sleep(10 * time.Millisecond)

		db := openDB(port)
		defer db.Close()

		_, err := db.Exec("CREATE TABLE t (a smallint, b smallint)")
		Expect(err).To(BeNil())
		_, err = db.Exec("INSERT INTO t VALUES (1,10),(2,20),(3,30)")
		Expect(err).To(BeNil())

		row := db.QueryRow("SELECT b FROM t WHERE a = $1", 2)
		var b int
		Expect(row.Scan(&b)).To(BeNil())
		Expect(b).To(Equal(20))
	})

	It("reports an undefined table with SQLSTATE 42P01", func() {
		port := "28901"
		go startServer(":" + port)
		time.Sleep(10 * time.Millisecond)

		db := openDB(port)
		defer db.Close()

		_, err := db.Exec("INSERT INTO nosuch VALUES (1)")
		Expect(err).ToNot(BeNil())
		pqErr, ok := err.(*pq.Error)
		Expect(ok).To(BeTrue())
		Expect(string(pqErr.Code)).To(Equal("42P01"))
	})
})
