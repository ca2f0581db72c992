package wire

import "fmt"

// MaxPacketSizeTooSmall is returned when the caller's max packet size
// cannot fit even one byte of payload once metadata/signature overhead is
// accounted for.
type MaxPacketSizeTooSmall struct {
	MaxPacketSize int
}

func (e *MaxPacketSizeTooSmall) Error() string {
	return fmt.Sprintf("max packet size %d too small to carry any payload", e.MaxPacketSize)
}

// FailedToSignPacket wraps a Signer failure encountered while encoding.
type FailedToSignPacket struct {
	Cause error
}

func (e *FailedToSignPacket) Error() string { return "failed to sign packet: " + e.Cause.Error() }
func (e *FailedToSignPacket) Unwrap() error { return e.Cause }

// PacketExists is returned by Decoder.AddPacket when (id, index) was
// already present in the group.
type PacketExists struct {
	ID    uint32
	Index uint32
}

func (e *PacketExists) Error() string {
	return fmt.Sprintf("packet %d/%d already exists", e.ID, e.Index)
}

// FinalPacketAlreadyExists is returned when a second Final packet arrives
// for a group that already has one.
type FinalPacketAlreadyExists struct {
	ID    uint32
	Index uint32
}

func (e *FinalPacketAlreadyExists) Error() string {
	return fmt.Sprintf("group %d already has a final packet (rejected index %d)", e.ID, e.Index)
}

// PacketBeyondLastIndex is returned when a packet's index exceeds the
// group's known final index.
type PacketBeyondLastIndex struct {
	ID    uint32
	Index uint32
}

func (e *PacketBeyondLastIndex) Error() string {
	return fmt.Sprintf("packet %d/%d is beyond the group's final index", e.ID, e.Index)
}

// NotReady is returned by Assemble when Verify would return false; it is
// not logged as an error by callers, it simply means "not yet".
type NotReady struct {
	ID uint32
}

func (e *NotReady) Error() string {
	return fmt.Sprintf("group %d is not yet complete", e.ID)
}
