package hcl_adapter

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/table"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with zero-width
// placeholder expressions, so a nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file, a placeholder has a
	// zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}

// isMapping reports whether val is an object or a map.
func isMapping(val cty.Value) bool {
	ty := val.Type()
	return ty.IsObjectType() || ty.IsMapType()
}

// entries returns the key/value pairs of an object or map. cty iterates
// both in sorted key order.
func entries(val cty.Value) ([]entry, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !isMapping(val) {
		return nil, fmt.Errorf("expected a mapping, got %s", val.Type().FriendlyName())
	}
	var out []entry
	it := val.ElementIterator()
	for it.Next() {
		k, v := it.Element()
		out = append(out, entry{key: k.AsString(), val: v})
	}
	return out, nil
}

type entry struct {
	key string
	val cty.Value
}

// attr returns the attribute name of a descriptor object, or a null value
// when it is absent.
func attr(val cty.Value, name string) cty.Value {
	if val.Type().IsObjectType() {
		if !val.Type().HasAttribute(name) {
			return cty.NullVal(cty.DynamicPseudoType)
		}
		return val.GetAttr(name)
	}
	if val.Type().IsMapType() {
		key := cty.StringVal(name)
		if val.HasIndex(key).True() {
			return val.Index(key)
		}
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

// asString reads a primitive as text. Numbers and booleans are rendered
// the way they are written.
func asString(val cty.Value) (string, bool) {
	if val.IsNull() || !val.IsKnown() {
		return "", false
	}
	switch val.Type() {
	case cty.String:
		return val.AsString(), true
	case cty.Number:
		return val.AsBigFloat().Text('f', -1), true
	case cty.Bool:
		return strconv.FormatBool(val.True()), true
	}
	return "", false
}

// asStrings reads a list or tuple of primitives. A single primitive is a
// one-element list.
func asStrings(val cty.Value) ([]string, bool) {
	if s, ok := asString(val); ok {
		return []string{s}, true
	}
	if val.IsNull() || !val.CanIterateElements() || isMapping(val) {
		return nil, false
	}
	var out []string
	it := val.ElementIterator()
	for it.Next() {
		_, v := it.Element()
		s, ok := asString(v)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// asBool reads an optional boolean flag.
func asBool(val cty.Value) (bool, bool) {
	if val.IsNull() {
		return false, true
	}
	if val.Type() != cty.Bool || !val.IsKnown() {
		return false, false
	}
	return val.True(), true
}

// toValue converts a cty primitive into a cell value. Numbers stay
// numeric, null is the empty value.
func toValue(val cty.Value) (table.Value, error) {
	if val.IsNull() {
		return table.Value{}, nil
	}
	if !val.IsKnown() {
		return table.Value{}, fmt.Errorf("value is not known")
	}
	switch val.Type() {
	case cty.String:
		return table.Text(val.AsString()), nil
	case cty.Number:
		f, _ := val.AsBigFloat().Float64()
		if bf := val.AsBigFloat(); bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return table.Int(i), nil
			}
		}
		return table.Number(f), nil
	case cty.Bool:
		return table.Text(strconv.FormatBool(val.True())), nil
	}
	return table.Value{}, fmt.Errorf("expected a string or number, got %s", val.Type().FriendlyName())
}
