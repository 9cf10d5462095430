package internal

import "errors"

// Error definitions for the playback coordinator
var (
	ErrNoSupportedFormat = errors.New("no supported format for codec tokens")
	ErrSinkNotOpen       = errors.New("sink not open")
	ErrSinkAlreadyOpen   = errors.New("sink already open")
	ErrSinkBusy          = errors.New("sink busy")
	ErrSinkFinalized     = errors.New("sink already finalized")
	ErrUnknownControl    = errors.New("unknown control message")
	ErrUnknownRequest    = errors.New("unknown request")
	ErrFrameTooLarge     = errors.New("frame exceeds size limit")
)
