package physics

// Material is a named set of surface properties. Body properties (mass,
// friction, restitution, drag) are derived from a material at creation time.
type Material struct {
	Name        string
	Friction    float32 // 0 = ice, 1 = stops immediately
	Restitution float32 // 0 = no bounce, 1 = perfect bounce
	Density     float32 // mass per unit volume
	Drag        float32 // linear velocity damping per second
}

// Relative densities, water = 1.
var materials = map[string]Material{
	"default":  {Name: "default", Friction: 0.5, Restitution: 0.3, Density: 1.0, Drag: 0.05},
	"concrete": {Name: "concrete", Friction: 0.8, Restitution: 0.1, Density: 2.4, Drag: 0.0},
	"metal":    {Name: "metal", Friction: 0.4, Restitution: 0.25, Density: 7.8, Drag: 0.0},
	"wood":     {Name: "wood", Friction: 0.6, Restitution: 0.4, Density: 0.7, Drag: 0.02},
	"flesh":    {Name: "flesh", Friction: 0.9, Restitution: 0.05, Density: 1.0, Drag: 0.1},
	"rubber":   {Name: "rubber", Friction: 0.95, Restitution: 0.85, Density: 1.2, Drag: 0.02},
	"ice":      {Name: "ice", Friction: 0.05, Restitution: 0.1, Density: 0.92, Drag: 0.0},
}

// MaterialByName looks up a catalog preset. Unknown names return the
// default material and ok=false.
func MaterialByName(name string) (Material, bool) {
	m, ok := materials[name]
	if !ok {
		return materials["default"], false
	}
	return m, true
}

// DefaultMaterial returns the fallback preset.
func DefaultMaterial() Material {
	return materials["default"]
}

// MaterialNames returns the catalog keys, for diagnostics and tooling.
func MaterialNames() []string {
	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	return names
}

// normalized clamps material properties into their valid ranges so a
// hand-built material cannot destabilize the solver.
func (m Material) normalized() Material {
	m.Friction = clamp(m.Friction, 0, 1)
	m.Restitution = clamp(m.Restitution, 0, 1)
	if m.Density <= 0 {
		m.Density = 1
	}
	if m.Drag < 0 {
		m.Drag = 0
	}
	return m
}
