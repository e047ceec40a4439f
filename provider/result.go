package provider

import (
	"strconv"

	"github.com/launchdarkly/go-sdk-common/v3/ldreason"
	"github.com/open-feature/go-sdk/openfeature"
)

// Flag metadata keys added to resolution details, when the LaunchDarkly reason provides them.
const (
	MetadataRuleIndex       = "ruleIndex"
	MetadataRuleID          = "ruleId"
	MetadataPrerequisiteKey = "prerequisiteKey"
	MetadataInExperiment    = "inExperiment"
)

// ResolutionDetails is the result of translating a LaunchDarkly evaluation detail. ErrorCode is
// empty unless Reason is openfeature.ErrorReason.
type ResolutionDetails[T any] struct {
	Value        T
	Reason       openfeature.Reason
	ErrorCode    openfeature.ErrorCode
	ErrorMessage string
	Variant      string
	FlagMetadata openfeature.FlagMetadata
}

// IsError returns true if the evaluation failed and Value is the caller's default.
func (r ResolutionDetails[T]) IsError() bool {
	return r.ErrorCode != ""
}

// TranslateResult converts the outcome of one of the LaunchDarkly client's VariationDetail
// methods. The value should be the one returned by that method, which for errors is already the
// default value; err is the error it returned, if any.
//
// WRONG_TYPE, CLIENT_NOT_READY and FLAG_NOT_FOUND have their own error codes. Every other error
// kind, including ones this package does not know about, becomes GENERAL. Any reason that is not
// an error passes through as the reason string, so new reason kinds degrade gracefully.
func TranslateResult[T any](value T, detail ldreason.EvaluationDetail, err error) ResolutionDetails[T] {
	reason := detail.Reason
	if reason.GetKind() == ldreason.EvalReasonError {
		return errorResult(value, errorCodeFor(reason.GetErrorKind()), errorMessageFor(reason, err))
	}

	ret := ResolutionDetails[T]{
		Value:        value,
		Reason:       openfeature.Reason(reason.GetKind()),
		FlagMetadata: metadataFor(reason),
	}
	if detail.VariationIndex.IsDefined() {
		ret.Variant = strconv.Itoa(detail.VariationIndex.IntValue())
	}
	return ret
}

func errorResult[T any](value T, code openfeature.ErrorCode, message string) ResolutionDetails[T] {
	return ResolutionDetails[T]{
		Value:        value,
		Reason:       openfeature.ErrorReason,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

func errorCodeFor(kind ldreason.EvalErrorKind) openfeature.ErrorCode {
	switch kind {
	case ldreason.EvalErrorWrongType:
		return openfeature.TypeMismatchCode
	case ldreason.EvalErrorClientNotReady:
		return openfeature.ProviderNotReadyCode
	case ldreason.EvalErrorFlagNotFound:
		// The OpenFeature Go SDK passes provider error codes through without adding its own.
		return openfeature.FlagNotFoundCode
	default:
		return openfeature.GeneralCode
	}
}

func errorMessageFor(reason ldreason.EvaluationReason, err error) string {
	if err != nil {
		return err.Error()
	}
	return string(reason.GetErrorKind())
}

func metadataFor(reason ldreason.EvaluationReason) openfeature.FlagMetadata {
	var m openfeature.FlagMetadata
	set := func(k string, v interface{}) {
		if m == nil {
			m = openfeature.FlagMetadata{}
		}
		m[k] = v
	}
	switch reason.GetKind() {
	case ldreason.EvalReasonRuleMatch:
		set(MetadataRuleIndex, reason.GetRuleIndex())
		if id := reason.GetRuleID(); id != "" {
			set(MetadataRuleID, id)
		}
	case ldreason.EvalReasonPrerequisiteFailed:
		set(MetadataPrerequisiteKey, reason.GetPrerequisiteKey())
	}
	if reason.IsInExperiment() {
		set(MetadataInExperiment, true)
	}
	return m
}

// ProviderDetail converts the result to the form expected by the OpenFeature SDK.
func (r ResolutionDetails[T]) ProviderDetail() openfeature.ProviderResolutionDetail {
	return openfeature.ProviderResolutionDetail{
		ResolutionError: resolutionError(r.ErrorCode, r.ErrorMessage),
		Reason:          r.Reason,
		Variant:         r.Variant,
		FlagMetadata:    r.FlagMetadata,
	}
}

func resolutionError(code openfeature.ErrorCode, message string) openfeature.ResolutionError {
	switch code {
	case "":
		return openfeature.ResolutionError{}
	case openfeature.TypeMismatchCode:
		return openfeature.NewTypeMismatchResolutionError(message)
	case openfeature.ProviderNotReadyCode:
		return openfeature.NewProviderNotReadyResolutionError(message)
	case openfeature.FlagNotFoundCode:
		return openfeature.NewFlagNotFoundResolutionError(message)
	default:
		return openfeature.NewGeneralResolutionError(message)
	}
}
