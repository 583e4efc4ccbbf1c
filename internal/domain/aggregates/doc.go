// Package aggregates defines the coded error type shared by every layer.
//
// Codes are transport-neutral; internal/http/response maps them to statuses.
package aggregates
