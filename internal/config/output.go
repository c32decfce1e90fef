package config

import (
	"fmt"
	"strings"
)

// OutputType is where a generated changelog goes.
type OutputType string

const (
	OutputConsole OutputType = "console"
	OutputFile    OutputType = "file"
	OutputGitHub  OutputType = "github"
)

// OutputTypes lists the accepted output types.
var OutputTypes = []OutputType{OutputConsole, OutputFile, OutputGitHub}

// ParseOutputType parses an output type case-insensitively. An empty value
// means console.
func ParseOutputType(value string) (OutputType, error) {
	if value == "" {
		return OutputConsole, nil
	}
	for _, t := range OutputTypes {
		if strings.EqualFold(value, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("expected one of %v (case-insensitive) but was '%s'", OutputTypes, value)
}
