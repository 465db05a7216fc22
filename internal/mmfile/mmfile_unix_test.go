//go:build unix

package mmfile

import (
	"testing"
	"unsafe"
)

func TestAnonReadWriteUnix(t *testing.T) {
	data, cleanup, err := Anon(1 << 16)
	if err != nil {
		t.Fatalf("Anon: %v", err)
	}
	defer func() {
		if cleanupErr := cleanup(); cleanupErr != nil {
			t.Fatalf("cleanup: %v", cleanupErr)
		}
	}()
	if len(data) != 1<<16 {
		t.Fatalf("len mismatch: got %d want %d", len(data), 1<<16)
	}
	if addr := uintptr(unsafe.Pointer(&data[0])); addr%4096 != 0 {
		t.Fatalf("mapping not page aligned: 0x%x", addr)
	}
	for i := range data {
		if data[i] != 0 {
			t.Fatalf("byte %d not zero-filled: 0x%x", i, data[i])
		}
	}
	data[0], data[len(data)-1] = 0xde, 0xad
	if data[0] != 0xde || data[len(data)-1] != 0xad {
		t.Fatalf("mapping not writable")
	}
}

func TestAnonDoubleCleanupUnix(t *testing.T) {
	_, cleanup, err := Anon(4096)
	if err != nil {
		t.Fatalf("Anon: %v", err)
	}
	if err := cleanup(); err != nil {
		t.Fatalf("first cleanup: %v", err)
	}
	if err := cleanup(); err != nil {
		t.Fatalf("second cleanup should be a no-op: %v", err)
	}
}

func TestAnonRejectsZeroSize(t *testing.T) {
	if _, _, err := Anon(0); err == nil {
		t.Fatalf("expected error for zero-size mapping")
	}
}
