//go:build !tinygo

package hal

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

// press queues a full press/release of code, dropping it if the queue is full.
func (k *hostKeyboard) press(code KeyCode) {
	for _, down := range []bool{true, false} {
		select {
		case k.ch <- KeyEvent{Code: code, Press: down}:
		default:
		}
	}
}
