// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes deploy/.env.example and deploy/config.yaml.example
// from the configuration defaults.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/ride/inlinetranslator/config"
	"codeberg.org/ride/inlinetranslator/core/audit"
)

const (
	envOutputFile  = "deploy/.env.example"
	yamlOutputFile = "deploy/config.yaml.example"
	filePerm       = 0o644
	dirPerm        = 0o755

	placeholderSecret = "<output of l10nctl keygen>"

	envFileHeader = `# Inline translator configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# Inline translator configuration (via configuration file)
#
# Copy this file to config.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
	secretYAMLComment = `  # -- v4.public secret key in hex, generate one with: l10nctl keygen`
)

// essentialEnv are written uncommented.
var essentialEnv = map[string]bool{
	"L10N_HOST":    true,
	"L10N_PORT":    true,
	"L10N_LOCALES": true,
}

func main() {
	audit.SetDefaultLogger()

	if err := os.MkdirAll(filepath.Dir(envOutputFile), dirPerm); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	cfg := &config.ServerConfig{}
	cfg.SetDefaults()

	writeFile(envOutputFile, func(w io.Writer) error { return writeEnv(w, cfg) })

	cfg.Security.Secret = placeholderSecret

	writeFile(yamlOutputFile, func(w io.Writer) error { return writeYAML(w, cfg) })
}

func writeFile(path string, generate func(io.Writer) error) {
	var sb strings.Builder

	if err := generate(&sb); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to generate file")
	}

	if err := os.WriteFile(path, []byte(sb.String()), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write file")
	}

	log.Info().Str("path", path).Msg("Successfully generated file")
}

// writeEnv lists every env-tagged field of the configuration sections.
func writeEnv(w io.Writer, cfg *config.ServerConfig) error {
	if _, err := io.WriteString(w, envFileHeader); err != nil {
		return err
	}

	val := reflect.ValueOf(*cfg)
	typ := val.Type()

	for i := range typ.NumField() {
		structField := typ.Field(i)
		structValue := val.Field(i)

		if !structField.IsExported() || structValue.Kind() != reflect.Struct || structField.Name == "Build" {
			continue
		}

		fmt.Fprintf(w, "## %s\n", structField.Name)

		innerTyp := structValue.Type()
		for j := range innerTyp.NumField() {
			field := innerTyp.Field(j)
			value := structValue.Field(j)

			name, ok := field.Tag.Lookup("env")
			if !ok || name == "-" {
				continue
			}

			formatted := formatEnvValue(value)

			switch {
			case name == "L10N_SECRET":
				fmt.Fprintf(w, "L10N_SECRET=\"%s\"\n", placeholderSecret)
			case essentialEnv[name]:
				fmt.Fprintf(w, "%s=\"%s\"\n", name, formatted)
			case formatted == "":
				fmt.Fprintf(w, "# %s=\n", name)
			default:
				fmt.Fprintf(w, "# %s=%s\n", name, formatted)
			}
		}

		fmt.Fprintln(w)
	}

	return nil
}

func formatEnvValue(value reflect.Value) string {
	if value.Kind() == reflect.Slice {
		parts := make([]string, value.Len())
		for i := range value.Len() {
			parts[i] = fmt.Sprint(value.Index(i).Interface())
		}

		return strings.Join(parts, ",")
	}

	return fmt.Sprint(value.Interface())
}

// writeYAML emits the defaults with every field commented out except the secret.
func writeYAML(w io.Writer, cfg *config.ServerConfig) error {
	var content strings.Builder

	encoderOpts := []yaml.EncodeOption{
		config.GetDurationEncoderOption(),
		yaml.Indent(2),
	}
	if err := yaml.NewEncoder(&content, encoderOpts...).Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if _, err := io.WriteString(w, yamlFileHeader); err != nil {
		return err
	}

	for line := range strings.SplitSeq(content.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if !strings.HasPrefix(line, " ") {
			fmt.Fprintf(w, "\n%s\n", line)

			continue
		}

		if strings.HasPrefix(trimmed, "secret:") {
			fmt.Fprintln(w, secretYAMLComment)
			fmt.Fprintln(w, line)

			continue
		}

		indentSize := len(line) - len(strings.TrimLeft(line, " "))
		fmt.Fprintf(w, "%s# %s\n", strings.Repeat(" ", indentSize), trimmed)
	}

	return nil
}
