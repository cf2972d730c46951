// Package nsfile loads a name-server file: UTF-8, one
// NameServerSpec per line, "//"-prefixed comment lines, blank lines
// allowed. Parsing reuses internal/nsspec, the same grammar a single
// line on the command line would use.
package nsfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/semihalev/zlog/v2"

	"github.com/dnsfleet/mhost/internal/nsspec"
	"github.com/dnsfleet/mhost/internal/reload"
)

// Load reads path and parses every non-comment, non-blank line as a
// NameServerSpec. When abortOnError is true, the first parse failure
// aborts the whole load; otherwise invalid
// lines are skipped and logged at Warn.
func Load(path string, abortOnError bool) ([]*nsspec.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nsfile: %w", err)
	}
	defer f.Close()

	var specs []*nsspec.Spec
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		spec, err := nsspec.Parse(line)
		if err != nil {
			if abortOnError {
				return nil, fmt.Errorf("nsfile: line %d: %w", lineNo, err)
			}
			zlog.Warn("skipping invalid name-server line", "path", path, "line", lineNo, "error", err.Error())
			continue
		}
		specs = append(specs, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("nsfile: %w", err)
	}

	return specs, nil
}

// Watch wraps Load behind a reload.Watcher so a long-running invocation
// picks up edits to the name-server file, the same way the wordlist
// loader does. Passing watch=false behaves exactly like a single Load
// call.
func Watch(path string, abortOnError, watch bool) (*reload.Watcher[[]*nsspec.Spec], error) {
	return reload.New(path, func(p string) ([]*nsspec.Spec, error) {
		return Load(p, abortOnError)
	}, watch, 0)
}
