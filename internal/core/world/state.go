package world

// Material names the kind of block occupying a cell.
type Material string

const (
	Air    Material = "air"
	Stone  Material = "stone"
	Dirt   Material = "dirt"
	Sand   Material = "sand"
	Gravel Material = "gravel"
	Grass  Material = "grass"
	Ice    Material = "ice"
	Water  Material = "water"
	Lava   Material = "lava"
)

// BlockState is an opaque snapshot of a cell. Two states are equal when
// every field matches, which is what lease reversion compares against.
type BlockState struct {
	Material Material
	Data     string
}

// Of is a BlockState with no extra data.
func Of(m Material) BlockState { return BlockState{Material: m} }

func (s BlockState) Equal(o BlockState) bool { return s == o }

func (s BlockState) IsAir() bool { return s.Material == Air || s.Material == "" }

func (s BlockState) IsLiquid() bool { return s.Material == Water || s.Material == Lava }

// IsSolid reports whether the state blocks movement.
func (s BlockState) IsSolid() bool { return !s.IsAir() && !s.IsLiquid() }

func (s BlockState) String() string {
	if s.Data == "" {
		return string(s.Material)
	}
	return string(s.Material) + "[" + s.Data + "]"
}
