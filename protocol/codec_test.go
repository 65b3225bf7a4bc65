package protocol

import (
	"bytes"
	"testing"
)

func TestDecode_PlayerStatusRequest(t *testing.T) {
	buf := []byte{0x04, 0x00, 0x00, 0x00, 0x01}
	req, n, err := Decode(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected to consume 5 bytes, got %d", n)
	}
	if req.Opcode != OpPlayerStatus || req.RequestID != 1 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecode_NeedsMoreBytes(t *testing.T) {
	for length := 0; length < minHeaderLen; length++ {
		buf := make([]byte, length)
		req, n, err := Decode(buf)
		if req != nil || n != 0 || err != nil {
			t.Fatalf("length %d: expected (nil,0,nil), got (%v,%d,%v)", length, req, n, err)
		}
	}

	// A DecryptSignature header claiming sig_len=3 but only 2 bytes present.
	buf := []byte{0x02, 0x00, 0x00, 0x00, 0x01, 0x00, 0x03, 0x61, 0x62}
	req, n, err := Decode(buf)
	if req != nil || n != 0 || err != nil {
		t.Fatalf("expected need-more-bytes, got (%v,%d,%v)", req, n, err)
	}
}

func TestDecode_DecryptNSignatureEmptySignature(t *testing.T) {
	buf := []byte{0x01, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00}
	req, n, err := Decode(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 bytes consumed, got %d", n)
	}
	if req.Signature != "" {
		t.Fatalf("expected empty signature, got %q", req.Signature)
	}
}

func TestDecode_UnrecognizedOpcodeByte(t *testing.T) {
	buf := []byte{0x7F, 0x00, 0x00, 0x00, 0x06}
	req, n, err := Decode(buf)
	if req != nil || n != 0 || err == nil {
		t.Fatalf("expected decode error for unrecognized opcode byte, got (%v,%d,%v)", req, n, err)
	}
}

func TestDecode_OpUnknownDecodesSuccessfully(t *testing.T) {
	buf := []byte{0xFF, 0x00, 0x00, 0x00, 0x07}
	req, n, err := Decode(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 bytes consumed, got %d", n)
	}
	if req.Opcode != OpUnknown || req.RequestID != 7 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecode_InvalidUTF8Signature(t *testing.T) {
	buf := []byte{0x02, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0xFF}
	req, n, err := Decode(buf)
	if req != nil || n != 0 || err == nil {
		t.Fatalf("expected decode error for invalid utf8, got (%v,%d,%v)", req, n, err)
	}
}

func TestEncode_PlayerStatus(t *testing.T) {
	got := EncodePlayerStatus(1, false, 0)
	want := []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestEncode_SignatureTimestamp(t *testing.T) {
	got := EncodeSignatureTimestamp(2, 19834)
	want := []byte{0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x4D, 0x7A}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestEncode_DecryptedEmpty(t *testing.T) {
	got := EncodeDecrypted(3, "")
	want := []byte{0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestEncode_DecryptedPassthrough(t *testing.T) {
	got := EncodeDecrypted(6, "abc")
	want := []byte{0x00, 0x00, 0x00, 0x06, 0x00, 0x00, 0x00, 0x05, 0x00, 0x03, 0x61, 0x62, 0x63}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestEncode_ForceUpdate(t *testing.T) {
	got := EncodeForceUpdate(4, StatusUpdated)
	want := []byte{0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x02, 0xF4, 0x4F}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}

	got = EncodeForceUpdate(5, StatusAlreadyCurrent)
	want = []byte{0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 0x02, 0xFF, 0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestRoundTrip_AllOpcodes(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
	}{
		{"ForceUpdate", []byte{0x00, 0x00, 0x00, 0x00, 0x0A}},
		{"GetSignatureTimestamp", []byte{0x03, 0x00, 0x00, 0x00, 0x0B}},
		{"PlayerStatus", []byte{0x04, 0x00, 0x00, 0x00, 0x0C}},
		{"PlayerUpdateTimestamp", []byte{0x05, 0x00, 0x00, 0x00, 0x0D}},
	}
	for _, tc := range cases {
		req, n, err := Decode(tc.buf)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if n != len(tc.buf) {
			t.Fatalf("%s: expected to consume %d bytes, got %d", tc.name, len(tc.buf), n)
		}
		if req.Signature != "" {
			t.Fatalf("%s: expected no signature", tc.name)
		}
	}
}
