package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Wang-tianhao/widget-auth-go/widgetauth"
)

func main() {
	var (
		secret  = flag.String("secret", os.Getenv("NEW_INSIDEBOARD_SECRETKEY"), "Shared secret key (defaults to $NEW_INSIDEBOARD_SECRETKEY)")
		subject = flag.String("sub", "user@example.com", "Subject (user email)")
		at      = flag.Int64("now", 0, "Issuance time as Unix seconds (default: current time)")
	)

	flag.Parse()

	now := time.Now()
	if *at != 0 {
		now = time.Unix(*at, 0)
	}

	gw, err := widgetauth.NewGateway(widgetauth.WithClock(func() time.Time { return now }))
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	resp, err := gw.Handle(widgetauth.WithRequestID(context.Background(), "tokengen"), widgetauth.Request{
		UserEmail: *subject,
		SecretKey: *secret,
	})
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	parts := strings.Split(resp.JWT, ".")
	claims, _ := base64.RawURLEncoding.DecodeString(parts[1])

	fmt.Println("\n=== Widget Token Generated ===")
	fmt.Printf("\nToken: %s\n\n", resp.JWT)
	fmt.Printf("Claims:  %s\n", claims)
	fmt.Printf("Expires: %s\n\n", now.Add(widgetauth.TokenLifetime).UTC().Format(time.RFC3339))
}
