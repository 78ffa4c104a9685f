package doctree

// DefaultRootHeading titles the synthetic root created when content
// appears before any heading.
const DefaultRootHeading = "Document Content"

// Build assembles a section forest from a flat, ordered element stream.
// It trusts the IsHeading/Level fields already present on each element;
// classification happens upstream.
//
// A single pass maintains a stack of open sections, root to innermost.
// A heading at level L closes every open section at level >= L, then opens
// a new section under whatever remains (or as a new forest root). Plain
// content accumulates on the innermost open section; content arriving
// before any heading lands in a synthetic "Document Content" root.
func Build(elements []Element) []*Section {
	var forest []*Section
	var stack []*Section

	for _, el := range elements {
		if el.Text == "" {
			continue
		}

		if el.IsHeading {
			sec := &Section{
				Heading: el.Text,
				Content: el.Text,
				Level:   el.Level,
			}
			for len(stack) > 0 && stack[len(stack)-1].Level >= el.Level {
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Subsections = append(parent.Subsections, sec)
			} else {
				forest = append(forest, sec)
			}
			stack = append(stack, sec)
			continue
		}

		if len(stack) == 0 {
			root := &Section{
				Heading: DefaultRootHeading,
				Content: el.Text,
				Level:   1,
			}
			forest = append(forest, root)
			stack = append(stack, root)
			continue
		}
		stack[len(stack)-1].AppendContent(el.Text)
	}

	return forest
}

// Walk visits every section in the forest depth-first, in document order.
func Walk(forest []*Section, visit func(*Section)) {
	for _, sec := range forest {
		visit(sec)
		Walk(sec.Subsections, visit)
	}
}
