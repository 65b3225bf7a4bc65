package protocol

import "encoding/binary"

// Response frames are request_id(4) + payload_len(4) + payload.

func frame(requestID uint32, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], requestID)
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[8:], payload)
	return buf
}

// EncodeForceUpdate builds a ForceUpdate response carrying a status code.
func EncodeForceUpdate(requestID uint32, status uint16) []byte {
	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, status)
	return frame(requestID, payload)
}

// EncodeDecrypted builds a DecryptSignature/DecryptNSignature response
// carrying the decoded string.
func EncodeDecrypted(requestID uint32, decoded string) []byte {
	b := []byte(decoded)
	payload := make([]byte, 2+len(b))
	binary.BigEndian.PutUint16(payload[0:2], uint16(len(b)))
	copy(payload[2:], b)
	return frame(requestID, payload)
}

// EncodeSignatureTimestamp builds a GetSignatureTimestamp response.
func EncodeSignatureTimestamp(requestID uint32, timestamp uint64) []byte {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, timestamp)
	return frame(requestID, payload)
}

// EncodePlayerStatus builds a PlayerStatus response.
func EncodePlayerStatus(requestID uint32, hasPlayer bool, playerID uint32) []byte {
	payload := make([]byte, 5)
	if hasPlayer {
		payload[0] = 1
	}
	binary.BigEndian.PutUint32(payload[1:5], playerID)
	return frame(requestID, payload)
}

// EncodePlayerUpdateTimestamp builds a PlayerUpdateTimestamp response
// carrying the number of seconds since the last successful update.
func EncodePlayerUpdateTimestamp(requestID uint32, secondsSinceUpdate uint64) []byte {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, secondsSinceUpdate)
	return frame(requestID, payload)
}
