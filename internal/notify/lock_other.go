//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd)

package notify

// lockFile is a no-op where flock is unavailable; only the in-process
// mutex guards the spool there.
func lockFile(path string) (func(), error) {
	return func() {}, nil
}
