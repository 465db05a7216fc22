//go:build windows

package mmfile

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Anon commits size bytes of zero-filled, read-write memory.
func Anon(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid mapping size %d", size)
	}
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: VirtualAlloc %d bytes: %w", size, err)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	released := false
	cleanup := func() error {
		if released {
			return nil
		}
		released = true
		return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
	}
	return data, cleanup, nil
}
