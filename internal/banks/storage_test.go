package banks

import (
	"path/filepath"
	"testing"
)

var testSizes = Sizes{Coils: 16, DiscreteInputs: 16, HoldingRegisters: 8, InputRegisters: 8}

func TestMemoryStorageRoundTrip(t *testing.T) {
	s := NewMemoryStorage(testSizes)
	b, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !b.HasCoils() || !b.HasHoldingRegisters() {
		t.Fatalf("expected requested banks to be present")
	}
	if err := s.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.OnWrite(TableHoldingRegisters, 0, 1)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banks.bin")

	s1 := NewFileStorage(path, testSizes)
	b1, err := s1.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b1.HoldingRegisters[3] = 0xCAFE
	s1.OnWrite(TableHoldingRegisters, 3, 1)
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2 := NewFileStorage(path, testSizes)
	b2, err := s2.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer s2.Close()
	if b2.HoldingRegisters[3] != 0xCAFE {
		t.Fatalf("HoldingRegisters[3] = %#x, want 0xCAFE after reload", b2.HoldingRegisters[3])
	}
}

func TestMmapStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banks.mmap")

	s1 := NewMmapStorage(path, testSizes)
	b1, err := s1.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b1.HoldingRegisters[1] = 0xBEEF
	s1.OnWrite(TableHoldingRegisters, 1, 1)
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2 := NewMmapStorage(path, testSizes)
	b2, err := s2.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer s2.Close()
	if b2.HoldingRegisters[1] != 0xBEEF {
		t.Fatalf("HoldingRegisters[1] = %#x, want 0xBEEF after reload", b2.HoldingRegisters[1])
	}
}

func TestLayoutOffsetsDoNotOverlap(t *testing.T) {
	l := newLayout(testSizes)
	if l.offsetCoils != 0 {
		t.Fatalf("offsetCoils = %d, want 0", l.offsetCoils)
	}
	if l.offsetDiscrete != testSizes.Coils {
		t.Fatalf("offsetDiscrete = %d, want %d", l.offsetDiscrete, testSizes.Coils)
	}
	if l.offsetHolding != testSizes.Coils+testSizes.DiscreteInputs {
		t.Fatalf("offsetHolding = %d, want %d", l.offsetHolding, testSizes.Coils+testSizes.DiscreteInputs)
	}
	wantInput := testSizes.Coils + testSizes.DiscreteInputs + testSizes.HoldingRegisters*2
	if l.offsetInput != wantInput {
		t.Fatalf("offsetInput = %d, want %d", l.offsetInput, wantInput)
	}
	wantTotal := wantInput + testSizes.InputRegisters*2
	if l.total != wantTotal {
		t.Fatalf("total = %d, want %d", l.total, wantTotal)
	}
}

func BenchmarkMemoryStorageOnWrite(b *testing.B) {
	s := NewMemoryStorage(testSizes)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.OnWrite(TableHoldingRegisters, 0, 1)
	}
}

func BenchmarkFileStorageOnWrite(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench_file.bin")
	s := NewFileStorage(path, testSizes)
	banks, err := s.Load()
	if err != nil {
		b.Fatalf("Load: %v", err)
	}
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		banks.HoldingRegisters[0] = uint16(i)
		s.OnWrite(TableHoldingRegisters, 0, 1)
	}
}

func BenchmarkMmapStorageOnWrite(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench_mmap.bin")
	s := NewMmapStorage(path, testSizes)
	banks, err := s.Load()
	if err != nil {
		b.Fatalf("Load: %v", err)
	}
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		banks.HoldingRegisters[0] = uint16(i)
		s.OnWrite(TableHoldingRegisters, 0, 1)
	}
}
