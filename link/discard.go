package link

// Discard drains b until it is closed, discarding every frame. Tests that
// only care about one side of a Buffered pair use this on the other side
// so its internal channel never fills and blocks the sender — the same
// role test.TestReadAndDiscardLoop plays for the client side of a
// packet.TestNewBufferedConn pair.
func Discard(b *Buffered) {
	for {
		if _, err := b.Recv(); err != nil {
			return
		}
	}
}
