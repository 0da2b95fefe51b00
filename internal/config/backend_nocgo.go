//go:build !cgo

package config

const DefaultBackend = BackendGozmq
