package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/launchdarkly/ld-openfeature-bridge/provider"

	"github.com/open-feature/go-sdk/openfeature"
)

var (
	errMissingFlagType     = errors.New("flag type is required")
	errMissingDefaultValue = errors.New("default value is required")
)

func errUnknownFlagType(flagType string) error {
	return fmt.Errorf("unknown flag type %q", flagType)
}

func errBadDefaultValue(flagType string, err error) error {
	return fmt.Errorf("default value is not a valid %s: %w", flagType, err)
}

// EvaluationRequestRep is the JSON body accepted by the flag evaluation endpoint.
type EvaluationRequestRep struct {
	Type    string                 `json:"type"`
	Default json.RawMessage        `json:"default"`
	Context map[string]interface{} `json:"context"`
}

// EvaluationResultRep is the JSON representation returned by the flag evaluation endpoint.
//
// This is exported for use in integration test code.
type EvaluationResultRep struct {
	FlagKey      string                 `json:"flagKey"`
	Value        interface{}            `json:"value"`
	Reason       string                 `json:"reason,omitempty"`
	Variant      string                 `json:"variant,omitempty"`
	ErrorCode    string                 `json:"errorCode,omitempty"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
	FlagMetadata map[string]interface{} `json:"flagMetadata,omitempty"`
}

// decodeDefault parses the raw default value into the Go type that matches the flag type.
func (r EvaluationRequestRep) decodeDefault() (interface{}, error) {
	if r.Type == "" {
		return nil, errMissingFlagType
	}
	if len(r.Default) == 0 {
		return nil, errMissingDefaultValue
	}
	var target interface{}
	switch r.Type {
	case provider.FlagTypeBoolean:
		var v bool
		target = &v
	case provider.FlagTypeString:
		var v string
		target = &v
	case provider.FlagTypeInt:
		var v int64
		target = &v
	case provider.FlagTypeFloat:
		var v float64
		target = &v
	case provider.FlagTypeObject:
		var v interface{}
		target = &v
	default:
		return nil, errUnknownFlagType(r.Type)
	}
	if err := json.Unmarshal(r.Default, target); err != nil {
		return nil, errBadDefaultValue(r.Type, err)
	}
	switch v := target.(type) {
	case *bool:
		return *v, nil
	case *string:
		return *v, nil
	case *int64:
		return *v, nil
	case *float64:
		return *v, nil
	default:
		return *(target.(*interface{})), nil
	}
}

// evaluationContext builds the OpenFeature evaluation context from the request's context object. A
// string targetingKey becomes the context's targeting key; every other property is an attribute.
func (r EvaluationRequestRep) evaluationContext() openfeature.EvaluationContext {
	targetingKey := ""
	attrs := make(map[string]interface{}, len(r.Context))
	for k, v := range r.Context {
		if s, ok := v.(string); ok && k == openfeature.TargetingKey {
			targetingKey = s
			continue
		}
		attrs[k] = v
	}
	return openfeature.NewEvaluationContext(targetingKey, attrs)
}

func makeEvaluationResultRep(value interface{}, details openfeature.EvaluationDetails) EvaluationResultRep {
	rep := EvaluationResultRep{
		FlagKey:      details.FlagKey,
		Value:        value,
		Reason:       string(details.Reason),
		Variant:      details.Variant,
		ErrorCode:    string(details.ErrorCode),
		ErrorMessage: details.ErrorMessage,
	}
	if len(details.FlagMetadata) > 0 {
		rep.FlagMetadata = map[string]interface{}(details.FlagMetadata)
	}
	return rep
}
