package operations

import "github.com/brunoga/deep"

// Element properties, deltas and pref values are JSON-shaped. Values deep
// cannot copy, such as funcs or channels, are shared.

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c, err := deep.Copy(m)
	if err != nil {
		return m
	}
	return c
}

func cloneValue(v any) any {
	if v == nil {
		return nil
	}
	c, err := deep.Copy(v)
	if err != nil {
		return v
	}
	return c
}
