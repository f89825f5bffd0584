// Command tasktoken mints a bearer token for the task API.
//
//	tasktoken -sub alice -role OPERATOR -ttl 120
//
// The signing secret is read from JWT_SECRET and the default lifetime from
// ACCESS_TOKEN_TTL_MIN (a .env file is honored).
package main

import (
    "flag"
    "fmt"
    "log"
    "os"
    "strings"

    "github.com/joho/godotenv"

    "github.com/iliyamo/bus-seat-reservation/internal/config"
    "github.com/iliyamo/bus-seat-reservation/internal/utils"
)

func main() {
    _ = godotenv.Load()
    cfg := config.LoadTokenConfig()

    sub := flag.String("sub", "operator", "token subject")
    role := flag.String("role", utils.RoleOperator, "OPERATOR or CUSTOMER")
    ttl := flag.Int("ttl", cfg.TTLMin, "lifetime in minutes")
    flag.Parse()

    r := strings.ToUpper(*role)
    if r != utils.RoleOperator && r != utils.RoleCustomer {
        log.Fatalf("invalid role %q", *role)
    }

    tok, err := utils.NewAccessToken(cfg.Secret, *sub, r, *ttl)
    if err != nil {
        log.Fatal(err)
    }
    fmt.Fprintln(os.Stderr, "expires", tok.Exp.Format("2006-01-02T15:04:05Z"))
    fmt.Println(tok.Token)
}
