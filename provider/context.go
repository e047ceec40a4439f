package provider

import (
	"sort"

	"github.com/launchdarkly/go-sdk-common/v3/ldattr"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/open-feature/go-sdk/openfeature"
)

const (
	keyAttr    = "key"
	nameAttr   = "name"
	customAttr = "custom"
	metaAttr   = "_meta"

	missingKeyMessage = "The EvaluationContext must contain either a 'targetingKey' or a 'key' and the type must be a string."
)

// CustomAttribute is a single named attribute of a User, other than its key and name.
type CustomAttribute struct {
	Name  string
	Value interface{}
}

// User is the normalized form of an OpenFeature evaluation context: an identity key, a display
// name, and an ordered list of custom attributes.
//
// A User is built for a single evaluation and is not retained afterward.
type User struct {
	Key    string
	Name   string
	Custom []CustomAttribute
}

// TranslateContext converts an OpenFeature evaluation context into a User.
//
// The key is taken from "targetingKey" if that is a non-empty string, otherwise from "key". If
// neither is present, the key is empty and a warning is logged; evaluation still proceeds, and
// the LaunchDarkly client decides how to treat the empty key.
//
// The "custom" attribute may be either a list of name/value pairs, whose order is preserved, or a
// map. All other attributes that are not reserved become custom attributes as well. Since Go maps
// are unordered, map entries and top-level attributes are added in sorted key order.
func TranslateContext(loggers ldlog.Loggers, evalCtx openfeature.FlattenedContext) User {
	user := User{
		Key:  identityOf(evalCtx),
		Name: stringAttr(evalCtx, nameAttr),
	}
	if user.Key == "" {
		loggers.Warn(missingKeyMessage)
	}

	if c, ok := parseCustom(evalCtx[customAttr]); ok {
		user.Custom = append(user.Custom, c.pairs()...)
	}

	for _, name := range sortedKeys(evalCtx) {
		if isReservedAttr(name) {
			continue
		}
		user.Custom = append(user.Custom, CustomAttribute{Name: name, Value: evalCtx[name]})
	}

	return user
}

// LDContext builds the LaunchDarkly evaluation context for this user.
//
// Custom attributes named "kind", "key", "name" or "_meta" are left out, since the LaunchDarkly
// context model would read them as its own properties. "anonymous" sets the context's anonymous
// property if it is a boolean and is left out otherwise.
func (u User) LDContext() ldcontext.Context {
	builder := ldcontext.NewBuilder(u.Key).Name(u.Name)
	for _, attr := range u.Custom {
		if attr.Name == "" || isBuiltinContextAttr(attr.Name) {
			continue
		}
		builder.TrySetValue(attr.Name, ldvalue.CopyArbitraryValue(attr.Value))
	}
	return builder.Build()
}

func isBuiltinContextAttr(name string) bool {
	switch name {
	case ldattr.KindAttr, ldattr.KeyAttr, ldattr.NameAttr, metaAttr:
		return true
	}
	return false
}

func identityOf(evalCtx openfeature.FlattenedContext) string {
	if key := stringAttr(evalCtx, openfeature.TargetingKey); key != "" {
		return key
	}
	return stringAttr(evalCtx, keyAttr)
}

func stringAttr(evalCtx openfeature.FlattenedContext, name string) string {
	if s, ok := evalCtx[name].(string); ok {
		return s
	}
	return ""
}

func isReservedAttr(name string) bool {
	switch name {
	case openfeature.TargetingKey, keyAttr, nameAttr, customAttr:
		return true
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// customValue is the shape of the "custom" attribute: either orderedPairs or unorderedMap.
type customValue interface {
	pairs() []CustomAttribute
}

type orderedPairs []CustomAttribute

type unorderedMap map[string]interface{}

func (o orderedPairs) pairs() []CustomAttribute {
	ret := make([]CustomAttribute, len(o))
	copy(ret, o)
	return ret
}

func (u unorderedMap) pairs() []CustomAttribute {
	ret := make([]CustomAttribute, 0, len(u))
	for _, name := range sortedKeys(u) {
		ret = append(ret, CustomAttribute{Name: name, Value: u[name]})
	}
	return ret
}

func parseCustom(raw interface{}) (customValue, bool) {
	switch v := raw.(type) {
	case []CustomAttribute:
		return orderedPairs(v), true
	case []map[string]interface{}:
		ret := make(orderedPairs, 0, len(v))
		for _, m := range v {
			if attr, ok := pairFromMap(m); ok {
				ret = append(ret, attr)
			}
		}
		return ret, true
	case []interface{}:
		ret := make(orderedPairs, 0, len(v))
		for _, item := range v {
			switch p := item.(type) {
			case CustomAttribute:
				ret = append(ret, p)
			case map[string]interface{}:
				if attr, ok := pairFromMap(p); ok {
					ret = append(ret, attr)
				}
			}
		}
		return ret, true
	case map[string]interface{}:
		return unorderedMap(v), true
	case map[string]string:
		m := make(unorderedMap, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m, true
	}
	return nil, false
}

func pairFromMap(m map[string]interface{}) (CustomAttribute, bool) {
	name, ok := m[nameAttr].(string)
	if !ok {
		return CustomAttribute{}, false
	}
	return CustomAttribute{Name: name, Value: m["value"]}, true
}
