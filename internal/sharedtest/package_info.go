// Package sharedtest provides helper code that may be used by tests in all packages of the service.
//
// Non-test code should never import this package or any of its subpackages.
//
// To avoid circular references, code in this package cannot reference the provider package. Helpers
// that need to do so are in the testclient subpackage.
package sharedtest
