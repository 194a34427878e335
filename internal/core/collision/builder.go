package collision

type explicit struct {
	a, b             string
	removeA, removeB bool
}

// Builder assembles Rules from layers and explicit pairs.
//
// Kinds in the same layer cancel each other out. A kind in a lower layer is
// removed by any kind of a higher layer while the higher one survives.
// Explicit pairs override whatever the layers produced.
type Builder struct {
	layers   [][]string
	explicit []explicit
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Layer appends a layer above every layer added before it.
func (b *Builder) Layer(kinds ...string) *Builder {
	if len(kinds) > 0 {
		b.layers = append(b.layers, append([]string(nil), kinds...))
	}
	return b
}

func (b *Builder) Add(first, second string, removeFirst, removeSecond bool) *Builder {
	b.explicit = append(b.explicit, explicit{a: first, b: second, removeA: removeFirst, removeB: removeSecond})
	return b
}

func (b *Builder) Build() *Rules {
	r := Empty()
	for i, layer := range b.layers {
		for x, a := range layer {
			for _, c := range layer[x:] {
				r.put(a, c, true, true)
			}
		}
		for _, lower := range b.layers[:i] {
			for _, low := range lower {
				for _, high := range layer {
					r.put(low, high, true, false)
				}
			}
		}
	}
	for _, e := range b.explicit {
		r.put(e.a, e.b, e.removeA, e.removeB)
	}
	return r
}
