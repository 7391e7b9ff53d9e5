package object

// Interner guarantees at most one String object exists per distinct string
// content. It also owns the registry of every heap object it has created,
// so a Reset releases everything exactly once. The compiler and the VM
// share one Interner, which makes identity comparison of strings valid
// across compile time and run time.
type Interner struct {
	strings *Table
	objects []*String
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{strings: NewTable()}
}

// Intern returns the canonical String for the given content, creating and
// registering it on first use. The lookup compares by hash, length, then
// byte content; on a hit no allocation occurs.
func (in *Interner) Intern(content string) *String {
	hash := HashString(content)
	if interned := in.strings.FindString(content, hash); interned != nil {
		return interned
	}
	s := &String{value: content, hash: hash}
	// The value slot is unused; presence in the table is what matters
	in.strings.Set(s, Nil)
	in.objects = append(in.objects, s)
	return s
}

// Lookup returns the canonical String for the given content if one has been
// interned, without creating it.
func (in *Interner) Lookup(content string) (*String, bool) {
	s := in.strings.FindString(content, HashString(content))
	if s == nil {
		return nil, false
	}
	return s, true
}

// ObjectCount returns the number of heap objects the interner has created
// since it was created or last reset.
func (in *Interner) ObjectCount() int {
	return len(in.objects)
}

// Reset releases every object the interner has created. Existing *String
// references remain safe to read but lose their interning identity.
func (in *Interner) Reset() {
	in.strings = NewTable()
	in.objects = nil
}
