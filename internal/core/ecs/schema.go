package ecs

import (
	"fmt"
)

// ==============================================
// Field Descriptors
// ==============================================

// FieldKind identifies the scalar type backing a component field.
// The set is closed; every kind maps to exactly one column layout.
type FieldKind uint8

const (
	FieldI8 FieldKind = iota
	FieldI16
	FieldI32
	FieldU8
	FieldU16
	FieldU32
	FieldF32
	FieldF64
	FieldBool   // packed to u8
	FieldRef    // 32-bit entity id; referent lifetime is not owned
	FieldEnum   // integer tag with declared accepted values
	FieldString // bounded-length UTF-8 stored inline
)

// String returns the kind name.
func (k FieldKind) String() string {
	switch k {
	case FieldI8:
		return "i8"
	case FieldI16:
		return "i16"
	case FieldI32:
		return "i32"
	case FieldU8:
		return "u8"
	case FieldU16:
		return "u16"
	case FieldU32:
		return "u32"
	case FieldF32:
		return "f32"
	case FieldF64:
		return "f64"
	case FieldBool:
		return "bool"
	case FieldRef:
		return "ref"
	case FieldEnum:
		return "enum"
	case FieldString:
		return "string"
	default:
		return "unknown"
	}
}

// numeric reports whether the kind is stored in a numeric column and may be
// used as a tuple/buffer element type.
func (k FieldKind) numeric() bool {
	switch k {
	case FieldI8, FieldI16, FieldI32, FieldU8, FieldU16, FieldU32, FieldF32, FieldF64:
		return true
	default:
		return false
	}
}

// FieldDef declares one typed field of a component schema.
// Arity > 1 turns a numeric kind into a fixed-length tuple or buffer field.
type FieldDef struct {
	Name  string    `json:"name"`
	Kind  FieldKind `json:"kind"`
	Arity int       `json:"arity"` // 1 for scalars

	// Defaults, used when a component is added without explicit data.
	DefaultNum  float64   `json:"default_num,omitempty"`
	DefaultNums []float64 `json:"default_nums,omitempty"` // per-element tuple defaults
	DefaultStr  string    `json:"default_str,omitempty"`

	// Enum: accepted integer tags. The default must be one of them.
	Accepted []int64 `json:"accepted,omitempty"`

	// String: inline byte capacity per entity.
	MaxLen int `json:"max_len,omitempty"`
}

// ==============================================
// Sync Modes
// ==============================================

// SyncMode declares how a component participates in external store
// synchronisation (see StoreAdapter).
type SyncMode uint8

const (
	SyncNone      SyncMode = iota // never reported to the adapter
	SyncDocument                  // persisted document state
	SyncEphemeral                 // shared but not persisted (cursors etc.)
)

// String returns the mode name.
func (m SyncMode) String() string {
	switch m {
	case SyncNone:
		return "none"
	case SyncDocument:
		return "document"
	case SyncEphemeral:
		return "ephemeral"
	default:
		return "unknown"
	}
}

// StableIDField is the conventional name of the string field carrying a
// component's cross-process UUID identity.
const StableIDField = "id"

// ==============================================
// Component Definition
// ==============================================

// ComponentDef declares a named schema of typed fields. A definition is a
// pure schema: the dense ComponentID is assigned when the definition is
// registered with a world, and lives on the resulting store.
//
// Definitions are built fluently and become immutable once registered:
//
//	pos := ecs.NewComponent("pos").F32("x", 0).F32("y", 0)
type ComponentDef struct {
	name   string
	fields []FieldDef
	index  map[string]int
	sync   SyncMode
	sealed bool
}

// NewComponent starts a new component definition.
func NewComponent(name string) *ComponentDef {
	return &ComponentDef{name: name, index: make(map[string]int)}
}

// Name returns the definition name.
func (d *ComponentDef) Name() string { return d.name }

// Sync returns the declared sync mode.
func (d *ComponentDef) Sync() SyncMode { return d.sync }

// Fields returns the ordered field descriptors.
func (d *ComponentDef) Fields() []FieldDef { return d.fields }

// FieldIndex returns the position of a named field, or -1.
func (d *ComponentDef) FieldIndex(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

func (d *ComponentDef) addField(f FieldDef) *ComponentDef {
	if d.sealed {
		panic(fmt.Sprintf("ecs: component %q is sealed; define fields before registration", d.name))
	}
	if _, dup := d.index[f.Name]; dup {
		panic(fmt.Sprintf("ecs: component %q declares field %q twice", d.name, f.Name))
	}
	d.index[f.Name] = len(d.fields)
	d.fields = append(d.fields, f)
	return d
}

// I8 declares a signed 8-bit field.
func (d *ComponentDef) I8(name string, def int8) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: FieldI8, Arity: 1, DefaultNum: float64(def)})
}

// I16 declares a signed 16-bit field.
func (d *ComponentDef) I16(name string, def int16) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: FieldI16, Arity: 1, DefaultNum: float64(def)})
}

// I32 declares a signed 32-bit field.
func (d *ComponentDef) I32(name string, def int32) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: FieldI32, Arity: 1, DefaultNum: float64(def)})
}

// U8 declares an unsigned 8-bit field.
func (d *ComponentDef) U8(name string, def uint8) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: FieldU8, Arity: 1, DefaultNum: float64(def)})
}

// U16 declares an unsigned 16-bit field.
func (d *ComponentDef) U16(name string, def uint16) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: FieldU16, Arity: 1, DefaultNum: float64(def)})
}

// U32 declares an unsigned 32-bit field.
func (d *ComponentDef) U32(name string, def uint32) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: FieldU32, Arity: 1, DefaultNum: float64(def)})
}

// F32 declares a 32-bit float field.
func (d *ComponentDef) F32(name string, def float32) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: FieldF32, Arity: 1, DefaultNum: float64(def)})
}

// F64 declares a 64-bit float field.
func (d *ComponentDef) F64(name string, def float64) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: FieldF64, Arity: 1, DefaultNum: def})
}

// Bool declares a boolean field, packed to u8.
func (d *ComponentDef) Bool(name string, def bool) *ComponentDef {
	v := 0.0
	if def {
		v = 1.0
	}
	return d.addField(FieldDef{Name: name, Kind: FieldBool, Arity: 1, DefaultNum: v})
}

// Ref declares an entity-reference field. The default is the invalid id.
func (d *ComponentDef) Ref(name string) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: FieldRef, Arity: 1})
}

// Enum declares an integer-tag field restricted to the accepted values.
func (d *ComponentDef) Enum(name string, def int64, accepted ...int64) *ComponentDef {
	return d.addField(FieldDef{
		Name: name, Kind: FieldEnum, Arity: 1,
		DefaultNum: float64(def), Accepted: accepted,
	})
}

// Str declares a bounded-length inline string field.
func (d *ComponentDef) Str(name string, maxLen int, def string) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: FieldString, Arity: 1, DefaultStr: def, MaxLen: maxLen})
}

// Tuple declares a fixed-length array field of a numeric kind,
// e.g. Tuple("pos", FieldF32, 2) for a Vec2.
func (d *ComponentDef) Tuple(name string, kind FieldKind, arity int, defaults ...float64) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: kind, Arity: arity, DefaultNums: defaults})
}

// Buffer declares a fixed-length numeric subarray field. Identical layout to
// Tuple; kept as a separate verb because buffers default to zero fill.
func (d *ComponentDef) Buffer(name string, kind FieldKind, length int) *ComponentDef {
	return d.addField(FieldDef{Name: name, Kind: kind, Arity: length})
}

// WithSync declares the component's sync mode. Synced components must carry
// a string field named StableIDField long enough to hold a UUID.
func (d *ComponentDef) WithSync(mode SyncMode) *ComponentDef {
	if d.sealed {
		panic(fmt.Sprintf("ecs: component %q is sealed", d.name))
	}
	d.sync = mode
	return d
}

// validate checks the schema before a world accepts it.
func (d *ComponentDef) validate() error {
	if d.name == "" {
		return NewComponentError(ErrInvalidFieldValue, "component name must not be empty", d.name)
	}
	for _, f := range d.fields {
		if f.Arity < 1 {
			return NewComponentError(ErrInvalidFieldValue,
				fmt.Sprintf("field %q has arity %d", f.Name, f.Arity), d.name)
		}
		if f.Arity > 1 && !f.Kind.numeric() {
			return NewComponentError(ErrInvalidFieldValue,
				fmt.Sprintf("field %q: only numeric kinds may carry arity > 1", f.Name), d.name)
		}
		if f.Kind == FieldEnum {
			if len(f.Accepted) == 0 {
				return NewComponentError(ErrInvalidFieldValue,
					fmt.Sprintf("enum field %q declares no accepted values", f.Name), d.name)
			}
			if !acceptedTag(f.Accepted, int64(f.DefaultNum)) {
				return NewComponentError(ErrInvalidFieldValue,
					fmt.Sprintf("enum field %q: default %d not accepted", f.Name, int64(f.DefaultNum)), d.name)
			}
		}
		if f.Kind == FieldString {
			if f.MaxLen < 1 {
				return NewComponentError(ErrInvalidFieldValue,
					fmt.Sprintf("string field %q needs a positive capacity", f.Name), d.name)
			}
			if len(f.DefaultStr) > f.MaxLen {
				return NewComponentError(ErrInvalidFieldValue,
					fmt.Sprintf("string field %q: default exceeds capacity %d", f.Name, f.MaxLen), d.name)
			}
		}
	}
	if d.sync != SyncNone {
		i := d.FieldIndex(StableIDField)
		if i < 0 || d.fields[i].Kind != FieldString || d.fields[i].MaxLen < 36 {
			return NewComponentError(ErrInvalidFieldValue,
				fmt.Sprintf("synced component needs a string %q field of at least 36 bytes", StableIDField), d.name)
		}
	}
	return nil
}

func acceptedTag(accepted []int64, tag int64) bool {
	for _, a := range accepted {
		if a == tag {
			return true
		}
	}
	return false
}

// ==============================================
// Singleton Definition
// ==============================================

// SingletonDef declares a component-shaped record with exactly one instance.
// It shares the ComponentDef field vocabulary and builder.
type SingletonDef struct {
	ComponentDef
}

// NewSingleton starts a new singleton definition.
func NewSingleton(name string) *SingletonDef {
	return &SingletonDef{ComponentDef{name: name, index: make(map[string]int)}}
}

// ==============================================
// Component Data
// ==============================================

// Data supplies initial or bulk field values keyed by field name.
// Missing fields fall back to the declared defaults. Numeric values accept
// any Go integer or float type; tuples accept []float64; strings accept
// string; refs accept EntityID.
type Data map[string]any
