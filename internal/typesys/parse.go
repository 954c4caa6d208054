// This file contains the logic for parsing HCL type expressions (e.g.
// `string`, `tuple([number, string])`) into cty.Type objects and rendering
// them back.

package typesys

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// ParseDataType parses a pin type as written in graph documents. Besides
// plain type expressions it understands the names of the built-in dynamic
// compatibility objects.
func ParseDataType(ctx context.Context, src string) (DataType, error) {
	src = strings.TrimSpace(src)
	if c, ok := LookupCompatibility(src); ok {
		return Dynamic(c), nil
	}
	ty, err := ParseType(ctx, src)
	if err != nil {
		return DataType{}, err
	}
	return Of(ty), nil
}

// ParseType parses an HCL type expression into its cty.Type equivalent.
// Every expression produced by TypeString is accepted.
func ParseType(ctx context.Context, src string) (cty.Type, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<type>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("invalid type expression %q: %w", src, diags)
	}
	ty, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("invalid type expression %q: %w", src, diags)
	}
	ctxlog.FromContext(ctx).Debug("Parsed type expression.", "src", src, "type", TypeString(ty))
	return ty, nil
}

// TypeString renders a type as an HCL type expression. Capsule types have
// no expression syntax and are rendered by their friendly name.
func TypeString(ty cty.Type) string {
	if ty == cty.NilType {
		return "<nil>"
	}
	if containsCapsule(ty) {
		return ty.FriendlyName()
	}
	return typeexpr.TypeString(ty)
}

func containsCapsule(ty cty.Type) bool {
	switch {
	case ty.IsCapsuleType():
		return true
	case ty.IsCollectionType():
		return containsCapsule(ty.ElementType())
	case ty.IsObjectType():
		for _, at := range ty.AttributeTypes() {
			if containsCapsule(at) {
				return true
			}
		}
	case ty.IsTupleType():
		for _, et := range ty.TupleElementTypes() {
			if containsCapsule(et) {
				return true
			}
		}
	}
	return false
}
