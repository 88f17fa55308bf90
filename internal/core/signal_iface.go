package core

// Frame is a raw payload already encoded for the wire.
type Frame []byte

// ConnID identifies one live transport connection. It is assigned at
// upgrade time and never reused.
type ConnID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
