package core

// Frame is a marshaled event ready for the wire.
type Frame []byte

// ConnID identifies one live connection for the lifetime of its socket.
type ConnID string

// SignalConnection abstracts the transport endpoint a broadcast fans out to.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
