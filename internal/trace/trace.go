// Package trace parses and replays allocation workload scripts.
//
// A script has one operation per line; blank lines and lines starting with
// '#' are ignored. Sizes accept plain byte counts or units ("4KiB", "1MiB").
//
//	alloc <name> <size>    allocate and bind the pointer to name
//	free <name>            free the pointer bound to name
//	verify                 run a full heap consistency check
//	expect-fail <size>     allocate and require ErrNoSpace
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/joshuapare/kheap/heap/alloc"
)

// Kind identifies a trace operation.
type Kind uint8

const (
	KindAlloc Kind = iota + 1
	KindFree
	KindVerify
	KindExpectFail
)

func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return "alloc"
	case KindFree:
		return "free"
	case KindVerify:
		return "verify"
	case KindExpectFail:
		return "expect-fail"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Op is one parsed trace line.
type Op struct {
	Kind Kind
	Name string
	Size int
	Line int
}

const commentPrefix = "#"

// Parse reads a trace script.
func Parse(r io.Reader) ([]Op, error) {
	scanner := bufio.NewScanner(r)
	var ops []Op
	line := 0
	for scanner.Scan() {
		line++
		trim := strings.TrimSpace(scanner.Text())
		if trim == "" || strings.HasPrefix(trim, commentPrefix) {
			continue
		}
		op, err := parseLine(trim)
		if err != nil {
			return nil, fmt.Errorf("trace: line %d: %w", line, err)
		}
		op.Line = line
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	return ops, nil
}

func parseLine(line string) (Op, error) {
	fields := strings.Fields(line)
	switch verb, args := fields[0], fields[1:]; verb {
	case "alloc":
		// Sizes may contain a space ("4 KiB"), so rejoin everything after the name.
		if len(args) < 2 {
			return Op{}, fmt.Errorf("alloc wants <name> <size>, got %q", line)
		}
		size, err := parseSize(strings.Join(args[1:], " "))
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: KindAlloc, Name: args[0], Size: size}, nil
	case "free":
		if len(args) != 1 {
			return Op{}, fmt.Errorf("free wants <name>, got %q", line)
		}
		return Op{Kind: KindFree, Name: args[0]}, nil
	case "verify":
		if len(args) != 0 {
			return Op{}, fmt.Errorf("verify takes no arguments, got %q", line)
		}
		return Op{Kind: KindVerify}, nil
	case "expect-fail":
		if len(args) == 0 {
			return Op{}, fmt.Errorf("expect-fail wants <size>, got %q", line)
		}
		size, err := parseSize(strings.Join(args, " "))
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: KindExpectFail, Size: size}, nil
	default:
		return Op{}, fmt.Errorf("unknown operation %q", verb)
	}
}

func parseSize(s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("size %q too large", s)
	}
	return int(n), nil
}

// Result summarizes a replay.
type Result struct {
	Ops          int    `json:"ops"`
	Allocs       int    `json:"allocs"`
	Frees        int    `json:"frees"`
	Verifies     int    `json:"verifies"`
	ExpectedFail int    `json:"expected_failures"`
	PeakInUse    uint64 `json:"peak_in_use"`
	Live         int    `json:"live"`
}

// ErrUnexpected reports a replay step whose outcome contradicts the script.
var ErrUnexpected = errors.New("trace: unexpected outcome")

// Run replays ops against a.
func Run(a *alloc.Allocator, ops []Op) (Result, error) {
	var res Result
	live := make(map[string]alloc.Ptr)

	for _, op := range ops {
		res.Ops++
		switch op.Kind {
		case KindAlloc:
			if _, dup := live[op.Name]; dup {
				return res, fmt.Errorf("%w: line %d: %q is already live", ErrUnexpected, op.Line, op.Name)
			}
			p, err := a.Alloc(op.Size)
			if err != nil {
				return res, fmt.Errorf("line %d: alloc %s %d: %w", op.Line, op.Name, op.Size, err)
			}
			live[op.Name] = p
			res.Allocs++
			res.PeakInUse = max(res.PeakInUse, a.Stats().BytesInUse)
		case KindFree:
			p, ok := live[op.Name]
			if !ok {
				return res, fmt.Errorf("%w: line %d: %q is not live", ErrUnexpected, op.Line, op.Name)
			}
			a.Free(p)
			delete(live, op.Name)
			res.Frees++
		case KindVerify:
			if err := a.Verify(); err != nil {
				return res, fmt.Errorf("line %d: %w", op.Line, err)
			}
			res.Verifies++
		case KindExpectFail:
			p, err := a.Alloc(op.Size)
			if err == nil {
				a.Free(p)
				return res, fmt.Errorf("%w: line %d: alloc of %d succeeded", ErrUnexpected, op.Line, op.Size)
			}
			if !errors.Is(err, alloc.ErrNoSpace) {
				return res, fmt.Errorf("line %d: %w", op.Line, err)
			}
			res.ExpectedFail++
		}
	}
	res.Live = len(live)
	return res, nil
}
