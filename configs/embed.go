// Package configs embeds the configuration template written by
// `txtseek config init`.
//
// The template documents every key with its default value, so a freshly
// written file loads to the same configuration as no file at all. Edit
// config.example.yaml and rebuild to change it.
package configs

import _ "embed"

// ConfigTemplate is the commented default configuration. It serves both the
// user file and the per-directory .txtseek.yaml.
//
//go:embed config.example.yaml
var ConfigTemplate string
