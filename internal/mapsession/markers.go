package mapsession

import (
	"math"
	"sync"

	"github.com/asim/quadtree"

	"portfolio-api/internal/geo"
	"portfolio-api/internal/models"
)

// minClusterLevel is the zoom level at which result markers start collapsing
// into clusters. Levels grow as the map zooms out.
const minClusterLevel = 6

// clusterBaseCellDeg is the cluster grid cell size in degrees at
// minClusterLevel; the cell doubles with every level above it.
const clusterBaseCellDeg = 0.01

// Cluster is a group of result markers rendered as one point.
type Cluster struct {
	Center models.GeoPoint `json:"center"`
	Count  int             `json:"count"`
	Places []models.Place  `json:"places"`
}

// MarkerLayer holds the current batch of result markers and a spatial index
// over them. Adding a new batch always clears the previous one first.
type MarkerLayer struct {
	mu     sync.RWMutex
	places []models.Place
	tree   *quadtree.QuadTree
}

// NewMarkerLayer creates an empty layer.
func NewMarkerLayer() *MarkerLayer {
	return &MarkerLayer{tree: newWorldTree()}
}

// newWorldTree builds a quadtree covering the whole world.
func newWorldTree() *quadtree.QuadTree {
	center := quadtree.NewPoint(0, 0, nil)
	half := quadtree.NewPoint(90, 180, nil)
	return quadtree.New(quadtree.NewAABB(center, half), 0, nil)
}

// Set replaces the marker batch wholesale and rebuilds the index.
func (l *MarkerLayer) Set(places []models.Place) {
	batch := make([]models.Place, len(places))
	copy(batch, places)

	tree := newWorldTree()
	for i := range batch {
		tree.Insert(quadtree.NewPoint(batch[i].Lat, batch[i].Lng, &batch[i]))
	}

	l.mu.Lock()
	l.places = batch
	l.tree = tree
	l.mu.Unlock()
}

// Clear removes all markers.
func (l *MarkerLayer) Clear() {
	l.Set(nil)
}

// Markers returns the current batch.
func (l *MarkerLayer) Markers() []models.Place {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Place, len(l.places))
	copy(out, l.places)
	return out
}

// Bounds returns the south-west and north-east corners enclosing every
// marker, and false when the layer is empty.
func (l *MarkerLayer) Bounds() (sw, ne models.GeoPoint, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.places) == 0 {
		return models.GeoPoint{}, models.GeoPoint{}, false
	}

	sw = models.GeoPoint{Lat: l.places[0].Lat, Lng: l.places[0].Lng}
	ne = sw
	for _, p := range l.places[1:] {
		sw.Lat = math.Min(sw.Lat, p.Lat)
		sw.Lng = math.Min(sw.Lng, p.Lng)
		ne.Lat = math.Max(ne.Lat, p.Lat)
		ne.Lng = math.Max(ne.Lng, p.Lng)
	}
	return sw, ne, true
}

// Nearest returns the marker closest to pt within radiusM metres, using the
// spatial index for the candidate set and true great-circle distance for
// the ranking. The bounding box is approximate, so candidates are re-checked.
func (l *MarkerLayer) Nearest(pt models.GeoPoint, radiusM float64) *models.Place {
	l.mu.RLock()
	defer l.mu.RUnlock()

	center := quadtree.NewPoint(pt.Lat, pt.Lng, nil)
	half := center.HalfPoint(radiusM)
	points := l.tree.Search(quadtree.NewAABB(center, half))

	var best *models.Place
	bestDist := math.Inf(1)
	for _, qp := range points {
		p, ok := qp.Data().(*models.Place)
		if !ok {
			continue
		}
		d := geo.Haversine(pt, models.GeoPoint{Lat: p.Lat, Lng: p.Lng})
		if d > radiusM {
			continue
		}
		if d < bestDist {
			cp := *p
			cp.Distance = d
			best = &cp
			bestDist = d
		}
	}
	return best
}

// Clusters groups the markers for the given zoom level. Below
// minClusterLevel every marker stands alone; at or above it markers sharing
// a grid cell merge into one cluster centered on their average position.
func (l *MarkerLayer) Clusters(level int) []Cluster {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < minClusterLevel {
		out := make([]Cluster, 0, len(l.places))
		for _, p := range l.places {
			out = append(out, Cluster{
				Center: models.GeoPoint{Lat: p.Lat, Lng: p.Lng},
				Count:  1,
				Places: []models.Place{p},
			})
		}
		return out
	}

	cell := clusterBaseCellDeg * math.Pow(2, float64(level-minClusterLevel))
	type key struct{ row, col int }
	buckets := map[key][]models.Place{}
	order := []key{}
	for _, p := range l.places {
		k := key{row: int(math.Floor(p.Lat / cell)), col: int(math.Floor(p.Lng / cell))}
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], p)
	}

	out := make([]Cluster, 0, len(order))
	for _, k := range order {
		members := buckets[k]
		var sumLat, sumLng float64
		for _, p := range members {
			sumLat += p.Lat
			sumLng += p.Lng
		}
		n := float64(len(members))
		out = append(out, Cluster{
			Center: models.GeoPoint{Lat: sumLat / n, Lng: sumLng / n},
			Count:  len(members),
			Places: members,
		})
	}
	return out
}
