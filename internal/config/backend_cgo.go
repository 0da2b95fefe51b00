//go:build cgo

package config

// DefaultBackend is libzmq whenever the C library can be linked.
const DefaultBackend = BackendLibzmq
