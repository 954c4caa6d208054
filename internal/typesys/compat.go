package typesys

// Compatibility decides, for a dynamically shaped destination pin, whether
// a source pin's type may feed it.
type Compatibility interface {
	// Name identifies the compatibility object in documents and messages.
	Name() string
	// Accepts reports whether a value of the given type may flow in.
	Accepts(from DataType) bool
}

type kindSet struct {
	name  string
	kinds map[Kind]bool
}

func (k kindSet) Name() string { return k.name }

func (k kindSet) Accepts(from DataType) bool {
	if from.Extended != nil {
		// A dynamic source is accepted when it is at least as narrow.
		return from.Extended.Name() == k.name || narrower(from.Extended, k)
	}
	kind := from.Kind()
	return kind == KindAny || k.kinds[kind]
}

func narrower(src Compatibility, dst kindSet) bool {
	other, ok := src.(kindSet)
	if !ok {
		return false
	}
	for kind := range other.kinds {
		if !dst.kinds[kind] {
			return false
		}
	}
	return true
}

type anyValue struct{}

func (anyValue) Name() string          { return "any_value" }
func (anyValue) Accepts(DataType) bool { return true }

var (
	// AnyList accepts every ordered sequence: lists, sets and tuples.
	AnyList Compatibility = kindSet{
		name:  "any_list",
		kinds: map[Kind]bool{KindList: true, KindSet: true, KindTuple: true},
	}

	// AnyCollection accepts every enumerable value.
	AnyCollection Compatibility = kindSet{
		name: "any_collection",
		kinds: map[Kind]bool{
			KindList: true, KindSet: true, KindTuple: true, KindMap: true, KindObject: true,
		},
	}

	// AnyValue accepts everything.
	AnyValue Compatibility = anyValue{}
)

// LookupCompatibility returns the built-in compatibility object with the
// given name.
func LookupCompatibility(name string) (Compatibility, bool) {
	for _, c := range []Compatibility{AnyList, AnyCollection, AnyValue} {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}
