// Package geo содержит проверку принадлежности точки зоне доставки.
package geo

// Point — географическая точка (широта, долгота).
type Point struct {
	Lat float64
	Lon float64
}

// Zone — замкнутый многоугольник зоны доставки.
type Zone struct {
	vertices []Point
}

// epsilon защищает от деления на ноль на горизонтальных рёбрах.
const epsilon = 1e-12

// NewZone создаёт зону по упорядоченному списку вершин.
func NewZone(vertices []Point) *Zone {
	vs := make([]Point, len(vertices))
	copy(vs, vertices)
	return &Zone{vertices: vs}
}

// DeliveryZone возвращает рабочую зону доставки заведения.
func DeliveryZone() *Zone {
	return NewZone([]Point{
		{59.743975, 30.309981},
		{59.734151, 30.299816},
		{59.729042, 30.319610},
		{59.725216, 30.321000},
		{59.724210, 30.327362},
		{59.726249, 30.330516},
		{59.719996, 30.354117},
		{59.728383, 30.355568},
		{59.730798, 30.366619},
		{59.735016, 30.362756},
		{59.735727, 30.350386},
		{59.744183, 30.344008},
		{59.743869, 30.333695},
		{59.738893, 30.326166},
	})
}

// PickupPoint возвращает координаты точки самовывоза.
// Сама точка в зону доставки не входит: зона покрывает жилой район.
func PickupPoint() Point {
	return Point{Lat: 59.7164001, Lon: 30.1051002}
}

// Contains проверяет принадлежность точки зоне методом чётности пересечений:
// горизонтальный луч из точки пересекает рёбра многоугольника, нечётное число
// пересечений означает «внутри».
func (z *Zone) Contains(p Point) bool {
	inside := false

	for i, j := 0, len(z.vertices)-1; i < len(z.vertices); j, i = i, i+1 {
		vi := z.vertices[i]
		vj := z.vertices[j]

		crosses := (vi.Lon > p.Lon) != (vj.Lon > p.Lon) &&
			p.Lat < (vj.Lat-vi.Lat)*(p.Lon-vi.Lon)/(vj.Lon-vi.Lon+epsilon)+vi.Lat
		if crosses {
			inside = !inside
		}
	}

	return inside
}
