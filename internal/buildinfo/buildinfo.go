// Package buildinfo carries version details stamped at link time, e.g.
//
//	go build -ldflags "-X kavyashar.org/intake/internal/buildinfo.Version=v1.2.0"
package buildinfo

var (
	Version    = "dev"
	CommitHash = ""
	CommitTime = ""
	Branch     = ""
	BuildTime  = ""
	Dirty      = ""
)

// ShortHash returns the first seven characters of CommitHash, or "unknown".
func ShortHash() string {
	if len(CommitHash) >= 7 {
		return CommitHash[:7]
	}
	return "unknown"
}
