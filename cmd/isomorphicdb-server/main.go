package main

import (
	"flag"
	"log"

	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/pgwire"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	addr := flag.String("addr", ":5432", "address to listen on")
	flag.Parse()

	cat := catalog.New()
	srv := pgwire.NewServer(cat)

	if err := srv.ListenAndServe(*addr); err != nil {
		log.Fatal(err)
	}
}
