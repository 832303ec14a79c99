//go:build !windows

package rawinput

// loadEntryPoints resolves nothing outside Windows, so every adapter
// call reports ErrResolutionUnavailable.
func loadEntryPoints() EntryPoints {
	logger.Debugf("raw injection is only available on windows")
	return EntryPoints{}
}
