// Package buildinfo exposes the version stamped into the binary at build
// time and derives the identifiers other packages report, like the
// User-Agent sent when downloading model assets and the parser version
// embedded in exported documents.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/pdfstruct/pdfstruct/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/pdfstruct/pdfstruct/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/pdfstruct/pdfstruct/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	// Version is the semantic version, "dev" for unstamped builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Short returns "version (commit)" with the commit truncated to 8 chars.
func Short() string {
	commit := Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("%s (%s)", Version, commit)
}

// UserAgent returns the User-Agent header for outbound HTTP requests,
// e.g. "pdfstruct/v1.0.0".
func UserAgent() string {
	return "pdfstruct/" + Version
}

// String returns the multi-line build information for `pdfstruct version`.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
