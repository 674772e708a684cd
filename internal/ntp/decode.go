package ntp

import (
	"encoding/binary"
	"fmt"
	"time"
)

// TransmitSeconds extracts the integer seconds of the transmit timestamp.
// The length is checked before any byte is read.
func TransmitSeconds(data []byte) (uint32, error) {
	if len(data) < MinResponseSize {
		return 0, shortResponse(len(data))
	}
	return binary.BigEndian.Uint32(data[TransmitSecondsOffset:MinResponseSize]), nil
}

// ToUnixSeconds converts NTP era 0 seconds to Unix seconds. Values before
// 1970 are rejected instead of wrapping.
func ToUnixSeconds(raw uint32) (int64, error) {
	if raw < NTPEpochOffset {
		return 0, &Error{
			Kind:   ErrTimestampUnderflow,
			Detail: fmt.Sprintf("raw seconds %d < %d", raw, NTPEpochOffset),
		}
	}
	return int64(raw) - NTPEpochOffset, nil
}

// Decode returns the server transmit time carried by a response packet,
// truncated to whole seconds
func Decode(data []byte) (time.Time, error) {
	raw, err := TransmitSeconds(data)
	if err != nil {
		return time.Time{}, err
	}

	sec, err := ToUnixSeconds(raw)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(sec, 0), nil
}
