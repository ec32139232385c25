package api

import (
	"errors"
	"fmt"
	"math"

	"github.com/solatis/policystore/internal/types"
	"google.golang.org/protobuf/types/known/structpb"
)

// errMalformed marks a request whose Struct does not have the expected shape.
var errMalformed = errors.New("malformed request")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errMalformed, fmt.Sprintf(format, args...))
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, toStatus(fmt.Errorf("failed to encode response: %w", err))
	}
	return s, nil
}

func field(req *structpb.Struct, name string) (*structpb.Value, bool) {
	if req == nil {
		return nil, false
	}
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func requiredString(req *structpb.Struct, name string) (string, error) {
	v, ok := field(req, name)
	if !ok {
		return "", malformed("%s is required", name)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || s.StringValue == "" {
		return "", malformed("%s must be a non-empty string", name)
	}
	return s.StringValue, nil
}

func requiredInt(req *structpb.Struct, name string) (int, error) {
	v, ok := field(req, name)
	if !ok {
		return 0, malformed("%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, malformed("%s must be a number", name)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, malformed("%s must be an integer, got %v", name, f)
	}
	return int(f), nil
}

func toStrings(v *structpb.Value, name string) ([]string, error) {
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, malformed("%s must be a list", name)
	}
	out := make([]string, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, malformed("%s[%d] must be a string", name, i)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

func optionalStrings(req *structpb.Struct, name string) ([]string, error) {
	v, ok := field(req, name)
	if !ok {
		return nil, nil
	}
	return toStrings(v, name)
}

// stringLists decodes a list of string lists, as used for rule batches.
func stringLists(req *structpb.Struct, name string) ([][]string, error) {
	v, ok := field(req, name)
	if !ok {
		return nil, malformed("%s is required", name)
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, malformed("%s must be a list", name)
	}
	out := make([][]string, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		fields, err := toStrings(item, fmt.Sprintf("%s[%d]", name, i))
		if err != nil {
			return nil, err
		}
		out = append(out, fields)
	}
	return out, nil
}

// decodeFilter returns nil when the request carries no filter.
func decodeFilter(req *structpb.Struct) (*types.Filter, error) {
	v, ok := field(req, "filter")
	if !ok {
		return nil, nil
	}
	s := v.GetStructValue()
	if s == nil {
		return nil, malformed("filter must be an object")
	}
	p, err := optionalStrings(s, "p")
	if err != nil {
		return nil, err
	}
	g, err := optionalStrings(s, "g")
	if err != nil {
		return nil, err
	}
	return &types.Filter{P: p, G: g}, nil
}

func decodeRules(req *structpb.Struct) ([]types.Rule, error) {
	v, ok := field(req, "rules")
	if !ok {
		return nil, malformed("rules is required")
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, malformed("rules must be a list")
	}
	rules := make([]types.Rule, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		s := item.GetStructValue()
		if s == nil {
			return nil, malformed("rules[%d] must be an object", i)
		}
		ptype, err := requiredString(s, "ptype")
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		fields, err := optionalStrings(s, "fields")
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rules = append(rules, types.Rule{PType: ptype, Fields: fields})
	}
	return rules, nil
}

func encodeRules(rules []types.Rule) []any {
	out := make([]any, 0, len(rules))
	for _, r := range rules {
		fields := make([]any, len(r.Fields))
		for i, f := range r.Fields {
			fields[i] = f
		}
		out = append(out, map[string]any{"ptype": r.PType, "fields": fields})
	}
	return out
}
