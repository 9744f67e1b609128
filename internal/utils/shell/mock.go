package shell

import (
	"fmt"
	"regexp"
	"strings"
)

// MockCommand maps a command pattern to a canned result. Pattern is matched
// exactly first, then as a regular expression.
type MockCommand struct {
	Pattern string
	Output  string
	Error   error
}

// MockExecutor is an Executor that never starts a process.
type MockExecutor struct {
	Commands []MockCommand
	// Calls records every command string passed to ExecCmd and ExecCmdWithStream.
	Calls []string
	// Dirs records the working directory of each call, index-aligned with Calls.
	Dirs []string
}

func NewMockExecutor(commands []MockCommand) *MockExecutor {
	return &MockExecutor{Commands: commands}
}

func (m *MockExecutor) match(cmdStr string) (MockCommand, bool) {
	for _, c := range m.Commands {
		if c.Pattern == cmdStr {
			return c, true
		}
	}
	for _, c := range m.Commands {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			continue
		}
		if re.MatchString(cmdStr) {
			return c, true
		}
	}
	return MockCommand{}, false
}

func (m *MockExecutor) exec(cmdStr string, workDir string) (string, error) {
	m.Calls = append(m.Calls, cmdStr)
	m.Dirs = append(m.Dirs, workDir)
	c, ok := m.match(cmdStr)
	if !ok {
		return "", fmt.Errorf("no mock output for command: %s", cmdStr)
	}
	return c.Output, c.Error
}

func (m *MockExecutor) ExecCmd(cmdStr string, workDir string, envVal []string) (string, error) {
	return m.exec(cmdStr, workDir)
}

func (m *MockExecutor) ExecCmdWithStream(cmdStr string, workDir string, envVal []string) (string, error) {
	return m.exec(cmdStr, workDir)
}

// LookPath answers from a "command -v <cmd>" mock entry.
func (m *MockExecutor) LookPath(cmd string) (string, error) {
	c, ok := m.match("command -v " + cmd)
	if !ok {
		return "", fmt.Errorf("executable file %q not found in $PATH", cmd)
	}
	if c.Error != nil {
		return "", c.Error
	}
	path := strings.TrimSpace(c.Output)
	if path == "" {
		return "", fmt.Errorf("executable file %q not found in $PATH", cmd)
	}
	return path, nil
}
