package gpx

// Route is a user-authored, ordered list of points leading to a destination.
// Unlike a track it carries no timing and no derived metrics.
type Route struct {
	Name   string
	Points []*Point
}

func NewRoute(name string, points ...*Point) *Route {
	return &Route{Name: name, Points: points}
}

// Crop removes the points outside area.
func (r *Route) Crop(area Bounds) {
	r.Points = filterPoints(r.Points, func(p *Point) bool { return area.Contains(p) })
}

// DeleteArea removes the points inside area.
func (r *Route) DeleteArea(area Bounds) {
	r.Points = filterPoints(r.Points, func(p *Point) bool { return !area.Contains(p) })
}

func filterPoints(points []*Point, keep func(*Point) bool) []*Point {
	kept := points[:0]
	for _, p := range points {
		if keep(p) {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(points); i++ {
		points[i] = nil
	}
	return kept
}
