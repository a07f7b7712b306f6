package chip8

// EventKind identifies which piece of machine state changed.
type EventKind uint8

const (
	RegisterChanged EventKind = iota
	PCChanged
	IndexChanged
	MemoryChanged
)

func (k EventKind) String() string {
	switch k {
	case RegisterChanged:
		return "register"
	case PCChanged:
		return "pc"
	case IndexChanged:
		return "index"
	case MemoryChanged:
		return "memory"
	}
	return "unknown"
}

// Event is a single change notification. Register is only meaningful for
// RegisterChanged and Address only for MemoryChanged.
type Event struct {
	Kind     EventKind
	Register uint8
	Address  uint16
	Value    uint16
}

// Observer receives change notifications. Observers are called synchronously
// from ExecuteCycle and must not call back into the machine.
type Observer func(Event)
