// Package common contains shared constants and sentinel errors used across
// signmanager components.
package common

// AuthorizationHeaderName is the gRPC metadata key (and lowercased HTTP
// header) carrying the bearer token on protected requests.
const AuthorizationHeaderName = "authorization"

// RequestIDHeaderName carries the per-request correlation id.
const RequestIDHeaderName = "x-request-id"
