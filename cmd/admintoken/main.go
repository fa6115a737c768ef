// Command admintoken prints a signed ADMIN bearer token for the protected
// admin routes. It reads JWT_SECRET and ACCESS_TOKEN_TTL_MIN from the
// environment or .env.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

func main() {
	def := config.LoadAuth()
	email := flag.String("email", "", "admin email, becomes the token subject")
	role := flag.String("role", "ADMIN", "role claim")
	ttl := flag.Duration("ttl", time.Duration(def.AccessTTLMin)*time.Minute, "token lifetime")
	flag.Parse()

	if def.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "admintoken: JWT_SECRET is not set")
		os.Exit(1)
	}
	tok, err := utils.NewAccessToken(def.JWTSecret, *email, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "admintoken:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
	fmt.Fprintln(os.Stderr, "expires", tok.Exp.Format(time.RFC3339))
}
