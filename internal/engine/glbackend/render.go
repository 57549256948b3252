package glbackend

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/engine/debug"
	"github.com/Faultbox/archviz/internal/engine/framebuffer"
	"github.com/Faultbox/archviz/internal/engine/shader"
	"github.com/Faultbox/archviz/pkg/math"
)

func (e *Engine) draw() {
	sw, sh := framebuffer.ScaledSize(e.width, e.height, e.scale)
	e.scene.Resize(sw, sh)
	e.scene.Bind()
	c := e.opts.ClearColor
	e.scene.Clear(c[0], c[1], c[2], c[3])

	if e.active == nil {
		e.scene.BlitToScreen(int32(e.width), int32(e.height))
		return
	}

	view := e.active.model.ViewMatrix()
	proj := math.Perspective(e.opts.FovY, float32(sw)/float32(sh), e.opts.Near, e.opts.Far)
	eye := e.active.model.Position()

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)

	e.drawMeshes(e.meshProg, view, proj, eye)
	e.drawQuads(view, proj)
	if e.ShowBounds {
		e.drawBounds(view, proj, eye)
	}

	if e.occlusion != nil && e.aoCamera != nil {
		e.occlusion.Resize(sw, sh)
		e.occlusion.Bind()
		e.occlusion.Clear(1, 1, 1, 1)
		e.drawMeshes(e.occlusionProg, e.aoCamera.model.ViewMatrix(), proj, e.aoCamera.model.Position())
	}

	e.composite(sw, sh)
}

// visible resolves the mesh drawn in place of m at eye, nil when culled.
// LOD stand-ins are drawn through their base regardless of their own
// enabled flag.
func (m *Mesh) visible(eye math.Vec3) *Mesh {
	if len(m.lods) == 0 {
		return m
	}
	dist := eye.Distance(m.WorldBounds().Center())
	i := pickLevel(m.lods, dist)
	if i < 0 {
		return m
	}
	return m.lods[i].mesh
}

func (e *Engine) drawMeshes(prog *shader.Program, view, proj math.Mat4, eye math.Vec3) {
	prog.Use()
	gl.UniformMatrix4fv(prog.Uniform("uView"), 1, false, view.Ptr())
	gl.UniformMatrix4fv(prog.Uniform("uProj"), 1, false, proj.Ptr())
	clip := clipUniforms(e.clip)
	gl.Uniform4fv(prog.Uniform("uClip"), engine.MaxClipPlanes, &clip[0])

	sun := e.opts.Sun.Direction()
	gl.Uniform3f(prog.Uniform("uLightDir"), sun.X, sun.Y, sun.Z)
	gl.Uniform1f(prog.Uniform("uLightIntensity"), e.opts.Sun.Intensity)
	mc := e.opts.MeshColor
	gl.Uniform4f(prog.Uniform("uColor"), mc[0], mc[1], mc[2], mc[3])

	for i := 0; i < engine.MaxClipPlanes; i++ {
		gl.Enable(gl.CLIP_DISTANCE0 + uint32(i))
	}
	for _, m := range e.meshes {
		if !m.enabled || m.quad {
			continue
		}
		if target := m.visible(eye); target != nil {
			model := target.model()
			gl.UniformMatrix4fv(prog.Uniform("uModel"), 1, false, model.Ptr())
			target.gpu.draw()
		}
	}
	for i := 0; i < engine.MaxClipPlanes; i++ {
		gl.Disable(gl.CLIP_DISTANCE0 + uint32(i))
	}
}

func (e *Engine) drawQuads(view, proj math.Mat4) {
	p := e.meshProg
	p.Use()
	gl.UniformMatrix4fv(p.Uniform("uView"), 1, false, view.Ptr())
	gl.UniformMatrix4fv(p.Uniform("uProj"), 1, false, proj.Ptr())

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	qc := e.opts.QuadColor
	for _, m := range e.meshes {
		if !m.enabled || !m.quad {
			continue
		}
		model := m.model()
		gl.UniformMatrix4fv(p.Uniform("uModel"), 1, false, model.Ptr())
		gl.Uniform4f(p.Uniform("uColor"), qc[0], qc[1], qc[2], m.opacity)
		m.gpu.draw()
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

func (e *Engine) drawBounds(view, proj math.Mat4, eye math.Vec3) {
	var verts []float32
	for _, m := range e.meshes {
		if !m.enabled || m.quad {
			continue
		}
		if target := m.visible(eye); target != nil {
			verts = append(verts, debug.BoundsWireframe(target.WorldBounds(), 0.01)...)
		}
	}
	if len(verts) == 0 {
		return
	}

	p := e.lineProg
	p.Use()
	gl.UniformMatrix4fv(p.Uniform("uView"), 1, false, view.Ptr())
	gl.UniformMatrix4fv(p.Uniform("uProj"), 1, false, proj.Ptr())
	gl.Uniform4f(p.Uniform("uColor"), 1, 0.8, 0.2, 1)

	gl.BindVertexArray(e.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, e.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STREAM_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(verts)/3))
	gl.BindVertexArray(0)
}

// composite upsamples the scene target to the drawable and applies the
// enabled effects.
func (e *Engine) composite(sw, sh int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(e.width), int32(e.height))
	gl.Disable(gl.DEPTH_TEST)

	p := e.postProg
	p.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, e.scene.ColorTexture())
	gl.Uniform1i(p.Uniform("uScene"), 0)

	ao := e.occlusion != nil && e.aoCamera != nil
	if ao {
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, e.occlusion.ColorTexture())
		gl.Uniform1i(p.Uniform("uOcclusion"), 1)
	}
	gl.Uniform1i(p.Uniform("uAmbientOcclusion"), boolInt(ao))
	gl.Uniform1i(p.Uniform("uAntialias"), boolInt(e.effects[engine.EffectAntialias]))
	gl.Uniform1i(p.Uniform("uBloom"), boolInt(e.effects[engine.EffectBloom]))
	gl.Uniform2f(p.Uniform("uTexel"), 1/float32(sw), 1/float32(sh))

	gl.BindVertexArray(e.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.ActiveTexture(gl.TEXTURE0)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
