// Package graph builds the proximity graph between particles.
//
// The graph is rebuilt from scratch every tick with an exhaustive pairwise
// scan. Particle counts are tens to low hundreds, so O(n²) per tick is cheaper
// than maintaining a spatial index under continuous motion.
package graph

import "github.com/pthm-cable/constellation/field"

// Edge is an unordered pair of particle indices with I < J.
type Edge struct {
	I, J int
}

// BuildEdges appends to dst[:0] every pair (i, j), i < j, whose squared
// distance is strictly below linkRadius². Edges come out in scan order.
func BuildEdges(particles []field.Particle, linkRadius float32, dst []Edge) []Edge {
	dst = dst[:0]
	radiusSq := linkRadius * linkRadius

	for i := 0; i < len(particles); i++ {
		pi := particles[i].Position
		for j := i + 1; j < len(particles); j++ {
			pj := particles[j].Position
			dx := pi[0] - pj[0]
			dy := pi[1] - pj[1]
			dz := pi[2] - pj[2]
			if dx*dx+dy*dy+dz*dz < radiusSq {
				dst = append(dst, Edge{I: i, J: j})
			}
		}
	}
	return dst
}

// Builder double-buffers edge lists so steady-state ticks do not allocate.
// The slice returned by Build stays valid until the call after next.
type Builder struct {
	radius  float32
	buffers [2][]Edge
	front   int
}

// NewBuilder creates a builder for the given link radius.
func NewBuilder(linkRadius float32) *Builder {
	return &Builder{radius: linkRadius}
}

// Build rebuilds the edge list into the back buffer and swaps.
func (b *Builder) Build(particles []field.Particle) []Edge {
	back := 1 - b.front
	b.buffers[back] = BuildEdges(particles, b.radius, b.buffers[back])
	b.front = back
	return b.buffers[back]
}

// Edges returns the most recently built edge list.
func (b *Builder) Edges() []Edge {
	return b.buffers[b.front]
}

// Radius returns the link radius.
func (b *Builder) Radius() float32 {
	return b.radius
}

// Degrees appends the degree of each of n particles to dst[:0].
func Degrees(n int, edges []Edge, dst []int) []int {
	dst = dst[:0]
	for i := 0; i < n; i++ {
		dst = append(dst, 0)
	}
	for _, e := range edges {
		dst[e.I]++
		dst[e.J]++
	}
	return dst
}
