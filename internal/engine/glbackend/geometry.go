package glbackend

import (
	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/pkg/math"
)

// floatsPerVertex is position followed by normal.
const floatsPerVertex = 6

// interleave packs g into position/normal vertices. Missing normals are
// computed from the triangles and missing indices draw the positions in
// order.
func interleave(g engine.Geometry) ([]float32, []uint32) {
	indices := g.Indices
	if len(indices) == 0 {
		indices = make([]uint32, len(g.Positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	normals := g.Normals
	if len(normals) != len(g.Positions) {
		normals = smoothNormals(g.Positions, indices)
	}

	verts := make([]float32, 0, len(g.Positions)*floatsPerVertex)
	for i, p := range g.Positions {
		n := normals[i]
		verts = append(verts, p.X, p.Y, p.Z, n.X, n.Y, n.Z)
	}
	return verts, indices
}

// smoothNormals averages area-weighted face normals per vertex. Vertices
// touching no triangle point up.
func smoothNormals(positions []math.Vec3, indices []uint32) []math.Vec3 {
	acc := make([]math.Vec3, len(positions))
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			continue
		}
		face := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		acc[a] = acc[a].Add(face)
		acc[b] = acc[b].Add(face)
		acc[c] = acc[c].Add(face)
	}
	for i, n := range acc {
		if n.IsZero() {
			acc[i] = math.Vec3Up
			continue
		}
		acc[i] = n.Normalize()
	}
	return acc
}

// quadGeometry is a size x size square in the XY plane facing +Z.
func quadGeometry(name string, size float32) engine.Geometry {
	h := size / 2
	front := math.Vec3{Z: 1}
	return engine.Geometry{
		Name:      name,
		Positions: []math.Vec3{{X: -h, Y: -h}, {X: h, Y: -h}, {X: h, Y: h}, {X: -h, Y: h}},
		Normals:   []math.Vec3{front, front, front, front},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

type lodLevel struct {
	distance float32
	mesh     *Mesh // nil culls
}

// insertLevel keeps levels sorted by distance. A level at an existing
// distance replaces it.
func insertLevel(levels []lodLevel, l lodLevel) []lodLevel {
	for i, existing := range levels {
		if existing.distance == l.distance {
			levels[i] = l
			return levels
		}
		if existing.distance > l.distance {
			levels = append(levels, lodLevel{})
			copy(levels[i+1:], levels[i:])
			levels[i] = l
			return levels
		}
	}
	return append(levels, l)
}

// pickLevel returns the index of the level in effect at dist, or -1 when
// the base mesh is still closer than every threshold.
func pickLevel(levels []lodLevel, dist float32) int {
	idx := -1
	for i, l := range levels {
		if dist < l.distance {
			break
		}
		idx = i
	}
	return idx
}

// worldBounds transforms the corners of local by m.
func worldBounds(local math.AABB, m math.Mat4) math.AABB {
	if local.IsEmpty() {
		return local
	}
	lo, hi := local.Min, local.Max
	corners := []math.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z}, {X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z}, {X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z}, {X: hi.X, Y: hi.Y, Z: hi.Z},
	}
	for i, c := range corners {
		corners[i] = m.TransformVec3(c)
	}
	return math.AABBFromPoints(corners)
}

// clipUniforms packs bound slots as plane equations. Unbound slots get an
// equation every point satisfies.
func clipUniforms(slots [engine.MaxClipPlanes]*math.Plane) [engine.MaxClipPlanes * 4]float32 {
	var out [engine.MaxClipPlanes * 4]float32
	for i, p := range slots {
		eq := [4]float32{0, 0, 0, -1}
		if p != nil {
			eq = p.Equation()
		}
		copy(out[i*4:], eq[:])
	}
	return out
}
