package rtu

import "testing"

func TestComputeCRCVectors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"crc_test vector", []byte{0x02, 0x07}, 0x1241},
		{"spec vector", []byte{0x01, 0x04, 0x02, 0xFF, 0xFF}, 0x80B8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeCRC(tt.data); got != tt.want {
				t.Fatalf("ComputeCRC(%x) = %#x, want %#x", tt.data, got, tt.want)
			}
		})
	}
}

func TestAppendCRCThenVerify(t *testing.T) {
	frame := []byte{0x11, 0x03, 0x00, 0x00, 0x00, 0x03}
	withCRC := AppendCRC(append([]byte{}, frame...))
	if len(withCRC) != len(frame)+2 {
		t.Fatalf("AppendCRC length = %d, want %d", len(withCRC), len(frame)+2)
	}
	if !VerifyCRC(withCRC) {
		t.Fatalf("VerifyCRC failed on a frame AppendCRC just produced")
	}
	withCRC[0] ^= 0xFF
	if VerifyCRC(withCRC) {
		t.Fatalf("VerifyCRC should fail after corrupting the frame")
	}
}

func TestBuildExceptionFrame(t *testing.T) {
	f := BuildExceptionFrame(0x11, 0x07, 0x01)
	if len(f) != 3 {
		t.Fatalf("exception PDU length = %d, want 3", len(f))
	}
	if f[1] != 0x87 {
		t.Fatalf("exception function byte = %#x, want 0x87", f[1])
	}
	withCRC := AppendCRC(f)
	want := []byte{0x11, 0x87, 0x01}
	if string(withCRC[:3]) != string(want) {
		t.Fatalf("exception frame body = % x, want % x", withCRC[:3], want)
	}
}

func TestUint16BERoundTrip(t *testing.T) {
	b := PutUint16BE(0xBEEF)
	if GetUint16BE(b) != 0xBEEF {
		t.Fatalf("round trip failed: got %#x", GetUint16BE(b))
	}
}
