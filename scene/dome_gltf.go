package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"sky-archive/core"
	"sky-archive/math"
)

// DomeDocument builds a glTF document holding mesh as a single unlit-style
// textured node. The texture, if any, is embedded as PNG.
func DomeDocument(mesh *Mesh) (*gltf.Document, error) {
	if mesh == nil || len(mesh.Vertices) == 0 {
		return nil, errors.New("dome: empty mesh")
	}
	doc := gltf.NewDocument()
	doc.Asset.Generator = "sky-archive"

	prim := &gltf.Primitive{
		Indices: gltf.Index(modeler.WriteIndices(doc, mesh.Indices)),
		Attributes: map[string]int{
			gltf.POSITION:   modeler.WritePosition(doc, mesh.Positions()),
			gltf.NORMAL:     modeler.WriteNormal(doc, mesh.Normals()),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, mesh.UVs()),
		},
	}

	material := &gltf.Material{
		Name: mesh.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
	}
	if mesh.Texture != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, mesh.Texture.Image()); err != nil {
			return nil, fmt.Errorf("dome: encode texture: %w", err)
		}
		img, err := modeler.WriteImage(doc, mesh.Texture.Name, "image/png", &buf)
		if err != nil {
			return nil, fmt.Errorf("dome: embed texture: %w", err)
		}
		doc.Samplers = append(doc.Samplers, &gltf.Sampler{
			MagFilter: gltf.MagLinear,
			MinFilter: gltf.MinLinear,
			WrapS:     gltf.WrapRepeat,
			WrapT:     gltf.WrapClampToEdge,
		})
		doc.Textures = append(doc.Textures, &gltf.Texture{
			Sampler: gltf.Index(len(doc.Samplers) - 1),
			Source:  gltf.Index(img),
		})
		material.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: len(doc.Textures) - 1}
	}
	doc.Materials = append(doc.Materials, material)
	prim.Material = gltf.Index(len(doc.Materials) - 1)

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: mesh.Name, Primitives: []*gltf.Primitive{prim}})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: mesh.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	return doc, nil
}

// ExportDome writes mesh to path as binary glTF.
func ExportDome(path string, mesh *Mesh) error {
	doc, err := DomeDocument(mesh)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("dome: save %q: %w", path, err)
	}
	return nil
}

// LoadDome reads back the first mesh primitive of a .glb or .gltf file,
// together with its embedded base-colour texture when present.
func LoadDome(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, fmt.Errorf("gltf %q: no mesh", path)
	}
	gm := doc.Meshes[0]
	prim := gm.Primitives[0]

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("gltf %q: no POSITION attribute", path)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3{X: 0, Y: 1, Z: 0},
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	m := CreateMeshFromData(gm.Name, verts, indices)
	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		tex, err := materialTexture(doc, doc.Materials[*prim.Material])
		if err != nil {
			return nil, err
		}
		m.Texture = tex
	}
	return m, nil
}

func materialTexture(doc *gltf.Document, mat *gltf.Material) (*Texture, error) {
	pbr := mat.PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil || pbr.BaseColorTexture.Index >= len(doc.Textures) {
		return nil, nil
	}
	gt := doc.Textures[pbr.BaseColorTexture.Index]
	if gt.Source == nil || *gt.Source >= len(doc.Images) {
		return nil, nil
	}
	img := doc.Images[*gt.Source]
	if img.BufferView == nil {
		return nil, nil
	}
	raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
	if err != nil {
		return nil, fmt.Errorf("image %d bufferview: %w", *gt.Source, err)
	}
	name := img.Name
	if name == "" {
		name = fmt.Sprintf("gltf_img_%d", *gt.Source)
	}
	return DecodeTexture(name, bytes.NewReader(raw))
}
