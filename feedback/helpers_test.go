package feedback

// testShape is a minimal Shape for tests: identity by pointer, liveness by
// flag. Killing one models the collector reclaiming the underlying layout.
type testShape struct {
	name string
	dead bool
}

func (s *testShape) Alive() bool { return !s.dead }

func (s *testShape) String() string { return s.name }

func newShape(name string) *testShape { return &testShape{name: name} }

// newCallVector allocates a vector with a single call slot.
func newCallVector() *Vector {
	var spec VectorSpec
	spec.AddCallSlot()
	return NewVector(DeriveMetadata(&spec))
}

// newLoadVector allocates a vector with a single property-load slot.
func newLoadVector() *Vector {
	var spec VectorSpec
	spec.AddLoadSlot()
	return NewVector(DeriveMetadata(&spec))
}
