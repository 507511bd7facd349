package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultScript is the reference command batch run when no script is given
var DefaultScript = []string{
	"CREATE fruits",
	"CREATE vegetables",
	"CREATE grains",
	"CREATE fruits/apples",
	"CREATE fruits/apples/fuji",
	"LIST",
	"CREATE grains/squash",
	"MOVE grains/squash vegetables",
	"CREATE foods",
	"MOVE grains foods",
	"MOVE fruits foods",
	"MOVE vegetables foods",
	"LIST",
	"DELETE fruits/apples",
	"DELETE foods/fruits/apples",
	"LIST",
}

// Step is one entry of a script. Err holds the parse failure, if any, so a
// malformed command is reported when the batch reaches it rather than
// rejecting the whole script.
type Step struct {
	Text    string
	Command Command
	Err     error
}

// CommandDTO is the JSON/YAML representation of a [Command]
type CommandDTO struct {
	Action string `json:"action" yaml:"action"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Dest   string `json:"dest,omitempty" yaml:"dest,omitempty"`
}

// ParseLines parses each line into a Step
func ParseLines(lines []string) []Step {
	steps := make([]Step, 0, len(lines))
	for _, line := range lines {
		cmd, err := Parse(line)
		steps = append(steps, Step{Text: line, Command: cmd, Err: err})
	}
	return steps
}

// ReadScript reads one command per line. Blank lines and lines starting
// with '#' are skipped.
func ReadScript(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024), 1024*1024)

	var lines []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadScriptFile loads a command script, choosing the format by extension.
// YAML (.yaml, .yml) and JSON (.json) files hold a list of [CommandDTO];
// anything else is read as plain text, one command per line.
func LoadScriptFile(path string) ([]Step, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		lines, err := ReadScript(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read script %s: %w", path, err)
		}
		return ParseLines(lines), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dtos []CommandDTO
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &dtos); err != nil {
			return nil, fmt.Errorf("failed to unmarshal script file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &dtos); err != nil {
			return nil, fmt.Errorf("failed to unmarshal script file: %w", err)
		}
	}
	return convertDTOs(dtos), nil
}

// convertDTOs keeps paths verbatim; unlike the text form, structured
// scripts can name segments containing spaces
func convertDTOs(dtos []CommandDTO) []Step {
	steps := make([]Step, 0, len(dtos))
	for _, dto := range dtos {
		cmd := Command{
			Action: Action(dto.Action),
			Path:   dto.Path,
			Source: dto.Source,
			Dest:   dto.Dest,
		}
		step := Step{Text: cmd.String(), Command: cmd}
		if err := cmd.Validate(); err != nil {
			step.Err = &CommandError{Line: step.Text, Cause: err.Error()}
		}
		steps = append(steps, step)
	}
	return steps
}
