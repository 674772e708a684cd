package ntp

import "time"

// Transport constants
const (
	// DefaultPort is the standard NTP/SNTP service port
	DefaultPort = 123

	// DefaultTimeout bounds the wait for the server's response
	DefaultTimeout = 5 * time.Second
)

// Packet layout
const (
	// PacketSize is the size of an SNTP request and of the receive buffer
	PacketSize = 48

	// MinResponseSize covers the header through the end of the transmit seconds field
	MinResponseSize = TransmitSecondsOffset + 4

	// TransmitSecondsOffset is the offset of the transmit timestamp's integer seconds
	TransmitSecondsOffset = 40

	// ReferenceIDOffset is the offset of the 32-bit reference identifier
	ReferenceIDOffset = 12

	pollOffset      = 2
	precisionOffset = 3
)

// Header sub-fields (RFC 5905 section 7.3)
const (
	// LeapNotInSync is leap indicator 3, clock unsynchronized
	LeapNotInSync = 3

	// Version is the protocol version placed in requests
	Version = 4

	// ModeClient is association mode 3
	ModeClient = 3
)

// Request field values
const (
	// RequestPoll is the poll interval, log2 seconds (64s)
	RequestPoll int8 = 6

	// RequestPrecision is the client clock precision, log2 seconds (about 1us)
	RequestPrecision int8 = -20
)

// ClientReferenceID tags requests sent by this client. Servers ignore it.
var ClientReferenceID = [4]byte{0x5E, 0x4E, 0x31, 0x34}

// NTPEpochOffset is the number of seconds from 1900-01-01 to 1970-01-01
const NTPEpochOffset = 2_208_988_800
