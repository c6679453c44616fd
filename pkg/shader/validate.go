package shader

import "fmt"

// Validate checks the rules the parser alone cannot: name collisions and
// binding slot collisions. Returned problems are advisory; a descriptor
// with issues still loads.
func (d *Descriptor) Validate() []error {
	var problems []error

	passNames := make(map[string]struct{}, len(d.Passes))
	for _, p := range d.Passes {
		if _, dup := passNames[p.Name]; dup {
			problems = append(problems, fmt.Errorf("duplicate pass name %q", p.Name))
		}
		passNames[p.Name] = struct{}{}
		if p.VertexShader == "" {
			problems = append(problems, fmt.Errorf("pass %q has empty vertex shader", p.Name))
		}
		if p.FragmentShader == "" {
			problems = append(problems, fmt.Errorf("pass %q has empty fragment shader", p.Name))
		}
	}

	resourceNames := make(map[string]struct{}, len(d.Resources))
	bindings := make(map[int]string, len(d.Resources))
	for _, r := range d.Resources {
		if _, dup := resourceNames[r.Name]; dup {
			problems = append(problems, fmt.Errorf("duplicate resource name %q", r.Name))
		}
		resourceNames[r.Name] = struct{}{}
		if other, dup := bindings[r.Binding]; dup {
			problems = append(problems, fmt.Errorf("resources %q and %q share binding %d", other, r.Name, r.Binding))
		}
		bindings[r.Binding] = r.Name
	}

	return problems
}
