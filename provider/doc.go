// Package provider implements an OpenFeature provider that evaluates flags with the LaunchDarkly
// server-side Go SDK.
//
// Register it with the OpenFeature SDK like any other provider:
//
//	p := provider.New(sdkKey, provider.WithConfig(ld.Config{}))
//	if err := openfeature.SetProviderAndWait(p); err != nil {
//		// the SDK key was rejected, or the client could not be created
//	}
//	client := openfeature.NewClient("my-app")
//
// Evaluation contexts are converted to LaunchDarkly contexts by TranslateContext, and LaunchDarkly
// evaluation details are converted back by TranslateResult. Flag changes received by the
// LaunchDarkly client are published as PROVIDER_CONFIGURATION_CHANGED events.
package provider
