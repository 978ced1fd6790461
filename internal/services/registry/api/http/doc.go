// Package httpapi serves the registry's read-only HTTP surface: health,
// metrics, token lookups, journal pages and a websocket event stream.
package httpapi
