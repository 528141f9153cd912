// internal/clipboard/clipboard.go
package clipboard

import "github.com/atotto/clipboard"

// Copy places text on the system clipboard
func Copy(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a clipboard backend exists on this system
func Available() bool {
	return !clipboard.Unsupported
}
