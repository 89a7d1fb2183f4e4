//go:build !tinygo && !cgo

package hal

// Without the window backend there is no key source; headless runs feed
// keys through HeadlessConfig.Keys instead.
func (k *hostKeyboard) poll() {}
