package linkstack

import "errors"

// Sentinel errors, following session.go's var-block-of-Err* idiom.
var (
	// ErrParseFrame is returned when a buffer does not parse as a valid
	// Ethernet frame.
	ErrParseFrame = errors.New("linkstack: failed to parse ethernet frame")

	// ErrFrameTooShort is returned when a buffer is too small to hold the
	// header it is being interpreted as.
	ErrFrameTooShort = errors.New("linkstack: frame too short")

	// ErrNotBroadcastDst is returned by NewEthernetTx when constructing an
	// ARP-use transmitter whose configured destination is not the
	// broadcast address.
	ErrNotBroadcastDst = errors.New("linkstack: arp EthernetTx requires broadcast destination")
)

// TxError is the result of a send-path operation: either nil (success) or
// one of the three failure modes below.
type TxError struct {
	Kind TxErrorKind
	Err  error // wrapped cause, set only when Kind == TxIoError
}

// TxErrorKind enumerates the ways an EthernetTx.Send / LinkChannel.Reserve
// can fail.
type TxErrorKind int

const (
	// TxOK indicates no error; (*TxError)(nil) is used for this in
	// practice, TxOK exists only to document the zero value.
	TxOK TxErrorKind = iota
	// TxLinkDown indicates the underlying link is not available for
	// writes.
	TxLinkDown
	// TxBufferFull indicates the link could not reserve the requested
	// number/size of frames.
	TxBufferFull
	// TxIoError wraps an arbitrary I/O failure from the link.
	TxIoError
)

func (e *TxError) Error() string {
	if e == nil {
		return "linkstack: tx ok"
	}
	switch e.Kind {
	case TxLinkDown:
		return "linkstack: link down"
	case TxBufferFull:
		return "linkstack: buffer full"
	case TxIoError:
		return "linkstack: io error: " + e.Err.Error()
	default:
		return "linkstack: unknown tx error"
	}
}

// Unwrap allows errors.Is/As to reach the wrapped I/O cause.
func (e *TxError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewTxIoError wraps err as a TxError of kind TxIoError.
func NewTxIoError(err error) *TxError {
	if err == nil {
		return nil
	}
	return &TxError{Kind: TxIoError, Err: err}
}
