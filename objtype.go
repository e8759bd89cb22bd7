package oleread

type ObjectType int

const (
	Unallocated ObjectType = iota
	Storage
	Stream
	LockBytes
	Property
	Root
	Unknown
)

func ObjectFromByte(b byte) ObjectType {
	switch b {
	case OBJ_TYPE_UNALLOCATED:
		return Unallocated
	case OBJ_TYPE_STORAGE:
		return Storage
	case OBJ_TYPE_STREAM:
		return Stream
	case OBJ_TYPE_LOCKBYTES:
		return LockBytes
	case OBJ_TYPE_PROPERTY:
		return Property
	case OBJ_TYPE_ROOT:
		return Root
	default:
		return Unknown
	}
}

func (o ObjectType) String() string {
	switch o {
	case Unallocated:
		return "empty"
	case Storage:
		return "storage"
	case Stream:
		return "stream"
	case LockBytes:
		return "lockbytes"
	case Property:
		return "property"
	case Root:
		return "root"
	default:
		return "unknown"
	}
}
