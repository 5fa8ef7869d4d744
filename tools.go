//go:build tools

package tools

// This file tracks versions of CLI tool dependencies.
// It is not compiled into the binary.
//
// Tools used via go:generate but installed out of band:
// - github.com/matryer/moq (service-layer mocks)
// - github.com/pressly/goose/v3/cmd/goose (migrations, also in the tool directive)
