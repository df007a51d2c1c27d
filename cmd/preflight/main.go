// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hamed0406/tenonchecker/internal/tenon"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	key := strings.TrimSpace(os.Getenv("TENON_API_KEY"))
	endpoint := strings.TrimSpace(os.Getenv("TENON_ENDPOINT"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	allowed := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))

	if key == "" {
		fail("TENON_API_KEY is empty (every check would be rejected).")
	}
	ok("TENON_API_KEY present")

	if endpoint == "" {
		warn("TENON_ENDPOINT empty; using " + tenon.DefaultEndpoint)
	} else if _, err := url.ParseRequestURI(endpoint); err != nil {
		fail("TENON_ENDPOINT is not a valid URL: " + err.Error())
	} else {
		ok("TENON_ENDPOINT=" + endpoint)
	}

	if pub == "" {
		warn("PUBLIC_API_KEYS empty; relay API accepts unauthenticated requests.")
	} else if strings.Contains(pub, " ") {
		warn("PUBLIC_API_KEYS contains spaces; use comma-separated with no spaces, e.g. key1,key2")
	}

	if allowed == "" {
		warn("ALLOWED_ORIGINS empty; relay API allows any origin.")
	} else {
		ok("ALLOWED_ORIGINS=" + allowed)
	}

	ok("preflight passed")
}
