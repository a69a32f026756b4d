package scene

import (
	"sync"
)

// Mesh pairs a geometry with a material.
type Mesh struct {
	Name     string
	Geometry *GridGeometry
	Material *Material

	mu      sync.RWMutex
	visible bool
}

// NewMesh returns a visible mesh.
func NewMesh(name string, geometry *GridGeometry, material *Material) *Mesh {
	return &Mesh{
		Name:     name,
		Geometry: geometry,
		Material: material,
		visible:  true,
	}
}

// Visible reports whether the mesh is drawn.
func (m *Mesh) Visible() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visible
}

// SetVisible shows or hides the mesh.
func (m *Mesh) SetVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = visible
}

// Node holds references to the meshes attached to it. It does not own them. A Node is safe for
// concurrent use.
type Node struct {
	Name string

	mu     sync.RWMutex
	meshes []*Mesh
}

// NewNode returns an empty node.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// Add attaches a mesh. Adding a mesh that is already attached does nothing.
func (n *Node) Add(m *Mesh) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.indexOf(m) >= 0 {
		return
	}
	n.meshes = append(n.meshes, m)
}

// Remove detaches a mesh and reports whether it was attached.
func (n *Node) Remove(m *Mesh) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := n.indexOf(m)
	if i < 0 {
		return false
	}
	n.meshes = append(n.meshes[:i], n.meshes[i+1:]...)
	return true
}

// Contains reports whether a mesh is attached.
func (n *Node) Contains(m *Mesh) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.indexOf(m) >= 0
}

// Meshes returns the attached meshes in attach order.
func (n *Node) Meshes() []*Mesh {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Mesh, len(n.meshes))
	copy(out, n.meshes)
	return out
}

// Len returns the number of attached meshes.
func (n *Node) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.meshes)
}

func (n *Node) indexOf(m *Mesh) int {
	for i, attached := range n.meshes {
		if attached == m {
			return i
		}
	}
	return -1
}
