// Package registryv1 is the registry.v1 wire contract: request and response
// messages, the TokenRegistry service descriptor, its server interface and a
// typed client. Messages travel as JSON under the "json" content subtype.
package registryv1
