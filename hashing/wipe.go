package hashing

import "runtime"

// wipe overwrites b with zeros. Buffers holding password-derived material
// are wiped before they are released.
func wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
