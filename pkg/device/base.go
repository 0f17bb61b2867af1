package device

import "errors"

// Device is a full-duplex IQ front end. Start calls back once per block with
// the received interleaved int8 I/Q values and a block of the same size to
// fill with the values to transmit. The callback must not keep either slice.
type Device interface {
	Start(callback func(in, out []int8)) error
	Stop()
}

// BufferSize is the default number of int8 values per block, the size of
// one HackRF USB transfer.
const BufferSize = 262144

var (
	ErrAlreadyStarted = errors.New("device already started")
	ErrOddBlockSize   = errors.New("block size must be even")
)
