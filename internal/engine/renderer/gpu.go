package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GPUChunk is a chunk geometry buffer uploaded to a VAO/VBO pair.
type GPUChunk struct {
	vao         uint32
	vbo         uint32
	vertexCount int32

	// Flattened material uniforms.
	ambient  []float32
	diffuse  []float32
	specular []float32
}

// NewGPUChunk uploads the vertex region of a chunk buffer. It must be called
// with a current OpenGL context.
func NewGPUChunk(buf []byte) (*GPUChunk, error) {
	verts, numVerts, err := vertexBytes(buf)
	if err != nil {
		return nil, err
	}
	_, numMats, _ := chunkHeader(buf)
	if numMats > maxShaderMaterials {
		return nil, fmt.Errorf("%w: %d materials, shader supports %d", ErrMaterialIndex, numMats, maxShaderMaterials)
	}

	c := &GPUChunk{vertexCount: int32(numVerts)}
	off := ChunkHeaderSize
	for range numMats {
		c.ambient = append(c.ambient, getFloat32(buf[off:]))
		d, s := getVec3(buf[off+4:]), getVec3(buf[off+16:])
		c.diffuse = append(c.diffuse, d[:]...)
		c.specular = append(c.specular, s[:]...)
		off += MaterialRecordSize
	}

	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)

	gl.GenBuffers(1, &c.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	if len(verts) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(verts), unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)
	}

	// 0 position, 1 uv, 2 normal, 3 material, 4 joints, 5 weights
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, VertexSize, offsetPosition)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, VertexSize, offsetTexCoord)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, VertexSize, offsetNormal)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribIPointer(3, 1, gl.INT, VertexSize, gl.PtrOffset(offsetMaterial))
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribIPointer(4, 4, gl.INT, VertexSize, gl.PtrOffset(offsetJoints))
	gl.EnableVertexAttribArray(4)
	gl.VertexAttribPointerWithOffset(5, 4, gl.FLOAT, false, VertexSize, offsetWeights)
	gl.EnableVertexAttribArray(5)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return c, nil
}

// VertexCount returns the number of uploaded vertices.
func (c *GPUChunk) VertexCount() int {
	return int(c.vertexCount)
}

// Delete releases the chunk's GPU resources.
func (c *GPUChunk) Delete() {
	if c.vbo != 0 {
		gl.DeleteBuffers(1, &c.vbo)
		c.vbo = 0
	}
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
		c.vao = 0
	}
}
