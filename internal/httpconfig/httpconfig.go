// Package httpconfig builds the HTTP configuration that the LaunchDarkly SDK uses for its
// connections, including an optional outbound proxy.
package httpconfig

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/launchdarkly/ld-openfeature-bridge/config"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/util"
	"github.com/launchdarkly/ld-openfeature-bridge/internal/version"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-server-sdk/v7/ldcomponents"
	"github.com/launchdarkly/go-server-sdk/v7/subsystems"
)

// UserAgent is the User-Agent header sent on all SDK requests.
var UserAgent = "LDOpenFeatureBridge/" + version.Version

var errProxyAuthWithoutProxyURL = errors.New("cannot specify proxy authentication without a proxy URL")

// HTTPConfig encapsulates ProxyConfig plus the SDK HTTP configuration derived from it.
type HTTPConfig struct {
	config.ProxyConfig
	ProxyURL          *url.URL
	SDKHTTPConfigurer subsystems.ComponentConfigurer[subsystems.HTTPConfiguration]
	SDKHTTPConfig     subsystems.HTTPConfiguration
}

// NewHTTPConfig validates all of the HTTP-related options and returns an HTTPConfig if successful.
func NewHTTPConfig(proxyConfig config.ProxyConfig, sdkKey config.SDKKey, loggers ldlog.Loggers) (HTTPConfig, error) {
	builder := ldcomponents.HTTPConfiguration().UserAgent(UserAgent)

	ret := HTTPConfig{ProxyConfig: proxyConfig}

	if !proxyConfig.URL.IsDefined() && (proxyConfig.User != "" || proxyConfig.Password != "") {
		return ret, errProxyAuthWithoutProxyURL
	}
	if proxyConfig.URL.IsDefined() {
		u := *proxyConfig.URL.Get()
		if proxyConfig.User != "" {
			u.User = url.UserPassword(proxyConfig.User, proxyConfig.Password)
		}
		loggers.Infof("Using proxy server at %s", util.RedactURL(proxyConfig.URL.String()))
		ret.ProxyURL = &u
		builder.ProxyURL(u.String())
	}
	if proxyConfig.CACertFile != "" {
		builder.CACertFile(proxyConfig.CACertFile)
	}

	var err error
	ret.SDKHTTPConfigurer = builder
	ret.SDKHTTPConfig, err = builder.Build(subsystems.BasicClientContext{SDKKey: string(sdkKey)})
	return ret, err
}

// Client creates a new HTTP client instance that isn't for SDK use.
func (c HTTPConfig) Client() *http.Client {
	return c.SDKHTTPConfig.CreateHTTPClient()
}
