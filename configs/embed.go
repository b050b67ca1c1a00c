// Package configs provides the embedded configuration template for
// ragcheck.
//
// The template is embedded at build time with //go:embed so it ships
// with every distribution of the binary. `ragcheck config init` writes
// it to .ragcheck.yaml in the deployment root.
//
// Configuration hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config NewConfig())
//  2. Deployment config (.ragcheck.yaml)
//  3. Environment variables (RAGCHECK_*)
package configs

import _ "embed"

// ConfigTemplate is the annotated starting point for .ragcheck.yaml.
//
//go:embed ragcheck.example.yaml
var ConfigTemplate string
