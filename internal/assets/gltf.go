package assets

import (
	"bytes"
	"fmt"
	"io/fs"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/pkg/math"
)

// Decode parses glTF JSON or GLB content, reading external buffers from
// fsys. A nil fsys leaves external buffers unresolved.
func Decode(data []byte, fsys fs.FS) ([]engine.Geometry, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(bytes.NewReader(data), fsys).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding gltf: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument flattens the default scene of doc into world-space geometry,
// one entry per primitive. Without a default scene every root node is used.
// It returns ErrNoPrimitives when nothing has positions, wrapping the first
// primitive decode failure if there was one.
func FromDocument(doc *gltf.Document) ([]engine.Geometry, error) {
	w := walker{doc: doc, cache: map[int][]engine.Geometry{}}

	roots := rootNodes(doc)
	for _, idx := range roots {
		w.visit(idx, math.Identity(), 0)
	}
	if len(doc.Nodes) == 0 {
		// Bare mesh libraries have no node graph.
		for mi := range doc.Meshes {
			w.emit(mi, math.Identity(), fmt.Sprintf("mesh_%d", mi))
		}
	}

	if len(w.out) == 0 {
		if w.firstErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoPrimitives, w.firstErr)
		}
		return nil, ErrNoPrimitives
	}
	return w.out, nil
}

func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// maxDepth bounds node recursion so cyclic graphs terminate.
const maxDepth = 64

type walker struct {
	doc   *gltf.Document
	cache map[int][]engine.Geometry // decoded primitives per mesh, local space
	out   []engine.Geometry

	firstErr error
}

func (w *walker) visit(idx int, parent math.Mat4, depth int) {
	if idx < 0 || idx >= len(w.doc.Nodes) || depth > maxDepth {
		return
	}
	n := w.doc.Nodes[idx]
	world := parent.Mul(localMatrix(n))

	if n.Mesh != nil {
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", idx)
		}
		w.emit(*n.Mesh, world, name)
	}
	for _, c := range n.Children {
		w.visit(c, world, depth+1)
	}
}

func (w *walker) emit(meshIdx int, world math.Mat4, name string) {
	prims, ok := w.cache[meshIdx]
	if !ok {
		prims = w.decodeMesh(meshIdx)
		w.cache[meshIdx] = prims
	}

	for i, p := range prims {
		g := engine.Geometry{
			Name:      name,
			Positions: make([]math.Vec3, len(p.Positions)),
			Indices:   p.Indices,
		}
		if len(prims) > 1 {
			g.Name = fmt.Sprintf("%s_prim%d", name, i)
		}
		for j, v := range p.Positions {
			g.Positions[j] = world.TransformVec3(v)
		}
		if len(p.Normals) > 0 {
			origin := world.TransformVec3(math.Vec3Zero)
			g.Normals = make([]math.Vec3, len(p.Normals))
			for j, nv := range p.Normals {
				g.Normals[j] = world.TransformVec3(nv).Sub(origin).Normalize()
			}
		}
		w.out = append(w.out, g)
	}
}

func (w *walker) decodeMesh(meshIdx int) []engine.Geometry {
	if meshIdx < 0 || meshIdx >= len(w.doc.Meshes) {
		return nil
	}
	gm := w.doc.Meshes[meshIdx]

	var out []engine.Geometry
	for pi, prim := range gm.Primitives {
		g, err := decodePrimitive(w.doc, prim)
		if err != nil {
			logger.Warn("gltf primitive skipped",
				zap.Int("mesh", meshIdx),
				zap.Int("primitive", pi),
				zap.Error(err))
			if w.firstErr == nil {
				w.firstErr = err
			}
			continue
		}
		out = append(out, g)
	}
	return out
}

func decodePrimitive(doc *gltf.Document, prim *gltf.Primitive) (engine.Geometry, error) {
	var g engine.Geometry

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return g, fmt.Errorf("no POSITION attribute")
	}
	if posIdx >= len(doc.Accessors) {
		return g, fmt.Errorf("POSITION accessor %d out of range", posIdx)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return g, fmt.Errorf("positions: %w", err)
	}
	if len(positions) == 0 {
		return g, fmt.Errorf("empty POSITION accessor")
	}
	g.Positions = make([]math.Vec3, len(positions))
	for i, p := range positions {
		g.Positions[i] = math.Vec3FromArray(p)
	}

	if idx, ok := prim.Attributes["NORMAL"]; ok && idx < len(doc.Accessors) {
		if normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil); err == nil && len(normals) == len(positions) {
			g.Normals = make([]math.Vec3, len(normals))
			for i, n := range normals {
				g.Normals[i] = math.Vec3FromArray(n)
			}
		}
	}

	if prim.Indices != nil && *prim.Indices < len(doc.Accessors) {
		g.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return g, fmt.Errorf("indices: %w", err)
		}
	}
	return g, nil
}

// localMatrix returns the node's local transform: its matrix when one is
// given, else translation * rotation * scale.
func localMatrix(n *gltf.Node) math.Mat4 {
	var zero [16]float64
	if n.Matrix != zero && n.Matrix != identity64 {
		var m math.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return math.TRS(
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	)
}

var identity64 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
