// Package wordlist loads the word list the discover workflow prepends
// to a target name. The on-disk format is one word per line; this
// package only supplies loading and a built-in default for callers
// that configure no file.
package wordlist

import (
	"bufio"
	"os"
	"strings"

	"github.com/dnsfleet/mhost/internal/reload"
)

// Default is the built-in word list used when Load is given no path, a
// handful of the subdomains most commonly seen in the wild.
var Default = []string{
	"www", "mail", "ftp", "smtp", "pop", "imap", "webmail", "admin",
	"api", "dev", "staging", "test", "portal", "vpn", "remote", "cpanel",
	"ns1", "ns2", "mx", "autodiscover", "cdn", "static", "assets", "blog",
	"shop", "store", "app", "mobile", "m", "secure", "login",
}

// Load reads path, one word per line, skipping blank lines and
// "//"-prefixed comments (the same comment convention nsfile uses for
// name-server files). An empty path, or a file with no usable words,
// falls back to Default.
func Load(path string) ([]string, error) {
	if path == "" {
		return Default, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" || strings.HasPrefix(w, "//") {
			continue
		}
		out = append(out, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return Default, nil
	}
	return out, nil
}

// Watch wraps Load behind a reload.Watcher so a long-running discover
// invocation picks up edits to the wordlist file. Passing watch=false
// behaves exactly like a single Load call.
func Watch(path string, watch bool) (*reload.Watcher[[]string], error) {
	return reload.New(path, Load, watch, 0)
}
