package main

import (
	"flag"
	"net/http"
	"os"

	jww "github.com/spf13/jwalterweatherman"

	"hushwire/internal/relay"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	jww.SetStdoutThreshold(jww.LevelInfo)

	jww.INFO.Printf("Relay listening on %s", *addr)
	if err := http.ListenAndServe(*addr, relay.NewHandler()); err != nil {
		jww.FATAL.Printf("Relay server: %v", err)
		os.Exit(1)
	}
}
