package types

// Axis selects one of the three coordinate axes.
type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

func (a Axis) String() string {
	switch a {
	case XAxis:
		return "X"
	case YAxis:
		return "Y"
	case ZAxis:
		return "Z"
	}
	return "?"
}
