package ftl

// Inspect traverses the expressions of p in source order: the selector of a
// select expression before its variants, positional call arguments before
// named ones. If fn returns false, the children of that expression are
// skipped.
func Inspect(p *Pattern, fn func(Expression) bool) {
	if p == nil {
		return
	}
	for _, el := range p.Elements {
		if pl, ok := el.(*Placeable); ok {
			inspectExpression(pl.Expression, fn)
		}
	}
}

func inspectExpression(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e := e.(type) {
	case *Placeable:
		inspectExpression(e.Expression, fn)
	case *SelectExpression:
		inspectExpression(e.Selector, fn)
		for _, v := range e.Variants {
			Inspect(v.Value, fn)
		}
	case *FunctionReference:
		inspectArguments(e.Arguments, fn)
	case *TermReference:
		inspectArguments(e.Arguments, fn)
	}
}

func inspectArguments(args *CallArguments, fn func(Expression) bool) {
	if args == nil {
		return
	}
	for _, a := range args.Positional {
		inspectExpression(a, fn)
	}
	for _, n := range args.Named {
		inspectExpression(n.Value, fn)
	}
}

// Variables returns the distinct variable names referenced directly by p,
// in order of first occurrence. References to other messages are not
// followed.
func Variables(p *Pattern) []string {
	var out []string
	seen := make(map[string]bool)
	Inspect(p, func(e Expression) bool {
		if v, ok := e.(*VariableReference); ok && !seen[v.ID] {
			seen[v.ID] = true
			out = append(out, v.ID)
		}
		return true
	})
	return out
}
