package transport

import "fmt"

// Inbound error taxonomy.
type (
	DecodePacketError struct{ Cause error }
	InvalidSignatureError struct{ GroupID uint32 }
	AssembleDataError struct{ Cause error }
	DecryptDataError  struct{ Cause error }
)

func (e *DecodePacketError) Error() string    { return "decode packet: " + e.Cause.Error() }
func (e *DecodePacketError) Unwrap() error    { return e.Cause }
func (e *InvalidSignatureError) Error() string { return fmt.Sprintf("invalid packet signature (group %d)", e.GroupID) }
func (e *AssembleDataError) Error() string     { return "assemble data: " + e.Cause.Error() }
func (e *AssembleDataError) Unwrap() error     { return e.Cause }
func (e *DecryptDataError) Error() string      { return "decrypt data: " + e.Cause.Error() }
func (e *DecryptDataError) Unwrap() error      { return e.Cause }

// Outbound error taxonomy.
type (
	EncodeDataError  struct{ Cause error }
	EncryptDataError struct{ Cause error }
)

func (e *EncodeDataError) Error() string  { return "encode data: " + e.Cause.Error() }
func (e *EncodeDataError) Unwrap() error  { return e.Cause }
func (e *EncryptDataError) Error() string { return "encrypt data: " + e.Cause.Error() }
func (e *EncryptDataError) Unwrap() error { return e.Cause }
