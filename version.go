package pkiviz

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release of this build.
var Version = strings.TrimSpace(rawVersion)
