package stack

import "fmt"

// CreationOrder returns the nodes in a valid creation order: every node
// appears after all of its dependencies. The order is deterministic, ties
// are broken by declaration order, so repeated evaluations of the same
// declaration walk the same sequence.
func (s *Stack) CreationOrder() ([]Resource, error) {
	indegree := make(map[string]int, len(s.resources))
	dependents := make(map[string][]string, len(s.resources))
	byName := make(map[string]Resource, len(s.resources))

	for _, r := range s.resources {
		if _, dup := byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate resource name %q", r.Name)
		}
		byName[r.Name] = r
		indegree[r.Name] = 0
	}
	for _, r := range s.resources {
		for _, dep := range r.DependsOn {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("resource %q depends on undeclared resource %q", r.Name, dep)
			}
			indegree[r.Name]++
			dependents[dep] = append(dependents[dep], r.Name)
		}
	}

	ordered := make([]Resource, 0, len(s.resources))
	ready := make([]string, 0, len(s.resources))
	for _, r := range s.resources {
		if indegree[r.Name] == 0 {
			ready = append(ready, r.Name)
		}
	}

	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byName[name])

		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				// Insert in declaration order to keep the walk stable.
				ready = insertByDeclaration(ready, dependent, s.resources)
			}
		}
	}

	if len(ordered) != len(s.resources) {
		return nil, fmt.Errorf("dependency cycle: %d of %d resources unreachable", len(s.resources)-len(ordered), len(s.resources))
	}
	return ordered, nil
}

// DestroyOrder returns the nodes in reverse creation order, so every node is
// destroyed before its dependencies.
func (s *Stack) DestroyOrder() ([]Resource, error) {
	ordered, err := s.CreationOrder()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}
	return ordered, nil
}

// insertByDeclaration inserts name into ready preserving the relative order
// the nodes were declared in.
func insertByDeclaration(ready []string, name string, declared []Resource) []string {
	pos := func(n string) int {
		for i, r := range declared {
			if r.Name == n {
				return i
			}
		}
		return len(declared)
	}

	p := pos(name)
	for i, existing := range ready {
		if pos(existing) > p {
			ready = append(ready[:i], append([]string{name}, ready[i:]...)...)
			return ready
		}
	}
	return append(ready, name)
}
