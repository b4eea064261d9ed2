package csvresync

import "fmt"

// VerdictKind is the tag of a NextRecord verdict. It is a closed set of
// four variants; callers switch on Kind rather than test for nil fields.
type VerdictKind int

const (
	// VerdictStart means "begin at byte 0, no resync needed".
	VerdictStart VerdictKind = iota
	// VerdictOffset means the next true record begins at Byte.
	VerdictOffset
	// VerdictEndOfFile means no further record exists at or after the probe.
	VerdictEndOfFile
	// VerdictFail means the oracle could not determine a boundary with the
	// available evidence. Fail is a verdict, not an error.
	VerdictFail
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictStart:
		return "Start"
	case VerdictOffset:
		return "Offset"
	case VerdictEndOfFile:
		return "EndOfFile"
	case VerdictFail:
		return "Fail"
	default:
		return fmt.Sprintf("VerdictKind(%d)", int(k))
	}
}

// NextRecord is the resync oracle's tagged-union result. Quoted and Byte
// are only meaningful when Kind == VerdictOffset.
type NextRecord struct {
	Kind   VerdictKind
	Quoted bool
	Byte   uint64
}

// Start returns the VerdictStart sentinel.
func Start() NextRecord {
	return NextRecord{Kind: VerdictStart}
}

// Offset returns an Offset verdict for a boundary found at byte b, noting
// whether the probe that produced it landed inside a quoted field.
func Offset(quoted bool, b uint64) NextRecord {
	return NextRecord{Kind: VerdictOffset, Quoted: quoted, Byte: b}
}

// EndOfFile returns the EndOfFile sentinel.
func EndOfFile() NextRecord {
	return NextRecord{Kind: VerdictEndOfFile}
}

// Fail returns the Fail sentinel: the oracle could not resolve a boundary.
func Fail() NextRecord {
	return NextRecord{Kind: VerdictFail}
}

func (n NextRecord) String() string {
	switch n.Kind {
	case VerdictOffset:
		return fmt.Sprintf("Offset(quoted=%t, byte=%d)", n.Quoted, n.Byte)
	default:
		return n.Kind.String()
	}
}
