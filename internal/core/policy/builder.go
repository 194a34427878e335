package policy

// Builder collects leaves into a single policy. Any leaf returning true
// removes the effect: every leaf is an independent reason to stop.
type Builder struct {
	leaves []Policy
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends p; nil is ignored.
func (b *Builder) Add(p Policy) *Builder {
	if p != nil {
		b.leaves = append(b.leaves, p)
	}
	return b
}

// Build returns the OR of every added leaf. Later Adds do not affect
// policies already built.
func (b *Builder) Build() Policy {
	return Or(append([]Policy(nil), b.leaves...)...)
}

func (b *Builder) Len() int {
	return len(b.leaves)
}
