// Package embedded provides access to embedded manifest files.
package embedded

import _ "embed"

// DefaultManifestData contains the embedded demo command manifest.
//
//go:embed manifests/default.yaml
var DefaultManifestData []byte
