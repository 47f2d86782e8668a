package binary

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	s := NewSer(make([]byte, 0, 64))
	s.AddUint8(7)
	s.AddUvarint(1_000_000_000)
	s.AddUint64(0xdeadbeef)
	s.AddBool(true)
	s.AddBool(false)
	s.AddByteSlice([]byte("jbc"))
	s.AddFixedByteArray([]byte{1, 2, 3, 4})

	d := NewDes(s.Output())
	if d.ReadUint8() != 7 {
		t.Fatal("uint8 mismatch")
	}
	if d.ReadUvarint() != 1_000_000_000 {
		t.Fatal("uvarint mismatch")
	}
	if d.ReadUint64() != 0xdeadbeef {
		t.Fatal("uint64 mismatch")
	}
	if !d.ReadBool() || d.ReadBool() {
		t.Fatal("bool mismatch")
	}
	if string(d.ReadByteSlice()) != "jbc" {
		t.Fatal("byte slice mismatch")
	}
	if !bytes.Equal(d.ReadFixedByteArray(4), []byte{1, 2, 3, 4}) {
		t.Fatal("fixed array mismatch")
	}
	if d.Error() != nil {
		t.Fatal(d.Error())
	}
	if len(d.RemainingData()) != 0 {
		t.Fatalf("unexpected remaining data: %x", d.RemainingData())
	}
}

func TestTruncated(t *testing.T) {
	s := NewSer(nil)
	s.AddUint64(42)

	d := NewDes(s.Output()[:4])
	d.ReadUint64()
	if d.Error() == nil {
		t.Fatal("expected error on truncated input")
	}
}
