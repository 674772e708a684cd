package ntp

// Request is an encoded SNTP client request. It is an array, so copies
// never share storage.
type Request [PacketSize]byte

// NewRequest builds the client request sent on every exchange
func NewRequest() Request {
	var r Request
	r[0] = header(LeapNotInSync, Version, ModeClient)
	poll, precision := RequestPoll, RequestPrecision
	r[pollOffset] = byte(poll)
	r[precisionOffset] = byte(precision)
	copy(r[ReferenceIDOffset:ReferenceIDOffset+4], ClientReferenceID[:])
	return r
}

// Bytes returns the packet as a freshly allocated slice
func (r Request) Bytes() []byte {
	b := make([]byte, PacketSize)
	copy(b, r[:])
	return b
}

// header packs the first octet: LI (2 bits), VN (3 bits), Mode (3 bits)
func header(leap, version, mode byte) byte {
	return (leap&0x3)<<6 | (version&0x7)<<3 | mode&0x7
}

// Leap returns the leap indicator of the request header
func (r Request) Leap() byte { return r[0] >> 6 }

// Version returns the protocol version of the request header
func (r Request) Version() byte { return (r[0] >> 3) & 0x7 }

// Mode returns the association mode of the request header
func (r Request) Mode() byte { return r[0] & 0x7 }
