//go:build tools

// Package tools pins developer-tool versions in go.mod/go.sum without
// making them part of the regular build.
package tools

import (
	_ "github.com/vektra/mockery/v2"
	_ "golang.org/x/tools/cmd/stringer"
)
