package simulation

import (
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/geometry"
)

// CellKey identifies one cubic cell of the spatial index.
type CellKey struct {
	X, Y, Z int
}

// SpatialIndex is a sparse uniform grid mapping cells to the agents inside them.
// Membership is maintained incrementally by the agents themselves: an agent is
// moved between buckets only when its cell changes, the grid is never rebuilt.
type SpatialIndex struct {
	cellSize   float64
	halfExtent float64
	buckets    map[CellKey][]*Agent
}

// NewSpatialIndex creates an empty index. halfExtent offsets coordinates so the
// world box starts at cell zero.
func NewSpatialIndex(cellSize, halfExtent float64) *SpatialIndex {
	return &SpatialIndex{
		cellSize:   cellSize,
		halfExtent: halfExtent,
		buckets:    make(map[CellKey][]*Agent),
	}
}

func (s *SpatialIndex) cellCoord(c float64) int {
	return int(math.Floor((c + s.halfExtent) / s.cellSize))
}

// CellKeyOf maps a position to its cell.
func (s *SpatialIndex) CellKeyOf(p geometry.Vector3D) CellKey {
	return CellKey{X: s.cellCoord(p.X), Y: s.cellCoord(p.Y), Z: s.cellCoord(p.Z)}
}

// Insert adds the agent to the bucket of its current position and records
// the key on the agent.
func (s *SpatialIndex) Insert(a *Agent) {
	key := s.CellKeyOf(a.Position)
	s.buckets[key] = append(s.buckets[key], a)
	a.cell = key
}

// Remove takes the agent out of the given bucket, deleting the bucket once empty.
// It reports whether the agent was found there.
func (s *SpatialIndex) Remove(a *Agent, key CellKey) bool {
	bucket, ok := s.buckets[key]
	if !ok {
		return false
	}
	i := slices.Index(bucket, a)
	if i < 0 {
		return false
	}
	bucket = slices.Delete(bucket, i, i+1)
	if len(bucket) == 0 {
		delete(s.buckets, key)
		return true
	}
	s.buckets[key] = bucket
	return true
}

// Move relocates the agent from one bucket to another.
func (s *SpatialIndex) Move(a *Agent, from, to CellKey) {
	if from == to {
		return
	}
	s.Remove(a, from)
	s.buckets[to] = append(s.buckets[to], a)
	a.cell = to
}

// QueryRadius returns the agents within radius of p, including an agent sitting at p.
func (s *SpatialIndex) QueryRadius(p geometry.Vector3D, radius float64) []*Agent {
	return s.QueryRadiusInto(nil, p, radius)
}

// QueryRadiusInto appends the agents within radius of p to dst and returns it.
// Reuse dst across calls to avoid allocations.
// The coarse pass scans every cell within ceil(radius/cellSize) of the center
// cell, the fine pass keeps only agents at Euclidean distance <= radius.
func (s *SpatialIndex) QueryRadiusInto(dst []*Agent, p geometry.Vector3D, radius float64) []*Agent {
	if radius < 0 {
		return dst
	}
	cellRadius := int(math.Ceil(radius / s.cellSize))
	center := s.CellKeyOf(p)
	radiusSq := radius * radius

	for x := center.X - cellRadius; x <= center.X+cellRadius; x++ {
		for y := center.Y - cellRadius; y <= center.Y+cellRadius; y++ {
			for z := center.Z - cellRadius; z <= center.Z+cellRadius; z++ {
				bucket, ok := s.buckets[CellKey{X: x, Y: y, Z: z}]
				if !ok {
					continue
				}
				for _, other := range bucket {
					if other.Position.DistanceSquaredTo(p) <= radiusSq {
						dst = append(dst, other)
					}
				}
			}
		}
	}
	return dst
}

// Bucket returns the agents currently registered in the given cell.
func (s *SpatialIndex) Bucket(key CellKey) []*Agent {
	return s.buckets[key]
}

// Buckets is the number of non-empty cells.
func (s *SpatialIndex) Buckets() int {
	return len(s.buckets)
}

// Len is the number of registered agents.
func (s *SpatialIndex) Len() int {
	n := 0
	for _, bucket := range s.buckets {
		n += len(bucket)
	}
	return n
}

// Contains reports whether the agent is registered under key.
func (s *SpatialIndex) Contains(a *Agent, key CellKey) bool {
	return slices.Contains(s.buckets[key], a)
}

// CellOf returns the key the agent is registered under.
func (s *SpatialIndex) CellOf(a *Agent) CellKey {
	return a.cell
}
