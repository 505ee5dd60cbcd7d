//go:build !unix

package stage

// Other platforms report cross-volume renames with errors that cannot be
// told apart from real failures, so no copy fallback is attempted.
func isCrossDevice(error) bool {
	return false
}
