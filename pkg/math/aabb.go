package math

import "math"

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EmptyAABB returns an inverted box that any Union will replace.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// NewAABB creates an AABB from two corners, swapping axes where min > max.
func NewAABB(a, b Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// AABBFromPoints returns the tight box around points.
// An empty slice yields EmptyAABB.
func AABBFromPoints(points []Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}

// IsEmpty reports whether the box contains no volume or is inverted.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Union returns the smallest box containing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxExtent returns the largest axis extent.
func (b AABB) MaxExtent() float32 {
	return b.Size().MaxComponent()
}

// Translate returns the box moved by offset.
func (b AABB) Translate(offset Vec3) AABB {
	return AABB{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

// Scale returns the box scaled uniformly about the world origin.
func (b AABB) Scale(f float32) AABB {
	if b.IsEmpty() {
		return b
	}
	return NewAABB(b.Min.Scale(f), b.Max.Scale(f))
}
