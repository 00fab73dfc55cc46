package scene

import (
	"sky-archive/core"
	"sky-archive/math"
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name       string
	Vertices   []core.Vertex
	Indices    []uint32
	IndexCount uint32

	// Texture is the base colour map; nil renders white.
	Texture *Texture

	// Bounds of the vertex positions.
	Min, Max math.Vec3
}

// CreateMeshFromData builds a Mesh and pre-computes its bounds.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:       name,
		Vertices:   vertices,
		Indices:    indices,
		IndexCount: uint32(len(indices)),
	}
	if len(vertices) > 0 {
		m.Min, m.Max = vertexBounds(vertices)
	}
	return m
}

func vertexBounds(vertices []core.Vertex) (lo, hi math.Vec3) {
	lo = vertices[0].Position
	hi = vertices[0].Position
	for _, v := range vertices[1:] {
		p := v.Position
		lo = math.Vec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = math.Vec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}

// Positions, Normals and UVs flatten the vertex attributes for export.
func (m *Mesh) Positions() [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = [3]float32{v.Position.X, v.Position.Y, v.Position.Z}
	}
	return out
}

func (m *Mesh) Normals() [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = [3]float32{v.Normal.X, v.Normal.Y, v.Normal.Z}
	}
	return out
}

func (m *Mesh) UVs() [][2]float32 {
	out := make([][2]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = [2]float32{v.UV.X, v.UV.Y}
	}
	return out
}

// CreateSkyDome generates a UV sphere seen from the inside: normals point
// at the centre and triangles wind counter-clockwise when viewed from it.
// U runs once around the horizon and V from the zenith (0) to the nadir (1),
// so an equirectangular or plain photo wraps around the viewer.
func CreateSkyDome(radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	vertices := make([]core.Vertex, 0, (rings+1)*(segments+1))
	indices := make([]uint32, 0, rings*segments*6)

	for ring := 0; ring <= rings; ring++ {
		phi := float32(ring) * math.Pi / float32(rings)
		sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)

		for seg := 0; seg <= segments; seg++ {
			theta := float32(seg) * 2 * math.Pi / float32(segments)
			outward := math.Vec3{X: sinPhi * math.Cos(theta), Y: cosPhi, Z: sinPhi * math.Sin(theta)}

			vertices = append(vertices, core.Vertex{
				Position: outward.Mul(radius),
				Normal:   outward.Negate(),
				UV:       math.Vec2{X: float32(seg) / float32(segments), Y: float32(ring) / float32(rings)},
				Color:    core.ColorWhite,
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			// Counter-clockwise seen from the centre.
			indices = append(indices, current, next, current+1)
			indices = append(indices, current+1, next, next+1)
		}
	}

	return CreateMeshFromData("SkyDome", vertices, indices)
}
