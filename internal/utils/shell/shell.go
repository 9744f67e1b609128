package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
)

// CurrentDir runs a command in the caller's working directory.
const CurrentDir = ""

// Executor runs shell command strings. Tests replace Default with a MockExecutor.
type Executor interface {
	ExecCmd(cmdStr string, workDir string, envVal []string) (string, error)
	ExecCmdWithStream(cmdStr string, workDir string, envVal []string) (string, error)
	LookPath(cmd string) (string, error)
}

// Default is the executor used by the package-level helpers.
var Default Executor = &DefaultExecutor{}

// DefaultExecutor runs commands through bash (or sh) -c on the host.
type DefaultExecutor struct{}

// getShell returns the preferred shell, falling back to /bin/sh if bash is not available
func getShell() string {
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, shell := range shells {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

// GetFullCmdStr prefixes cmdStr with the given environment assignments.
func GetFullCmdStr(cmdStr string, workDir string, envVal []string) (string, error) {
	log := logger.Logger()

	if workDir != CurrentDir {
		info, err := os.Stat(workDir)
		if err != nil {
			return cmdStr, fmt.Errorf("working directory %s is not accessible: %w", workDir, err)
		}
		if !info.IsDir() {
			return cmdStr, fmt.Errorf("working directory %s is not a directory", workDir)
		}
	}

	envValStr := ""
	for _, env := range envVal {
		envValStr += env + " "
	}
	fullCmdStr := envValStr + cmdStr

	if workDir != CurrentDir {
		log.Debugf("Exec in %s: [%s]", workDir, cmdStr)
	} else {
		log.Debugf("Exec: [%s]", cmdStr)
	}
	return fullCmdStr, nil
}

func newCommand(fullCmdStr string, workDir string) *exec.Cmd {
	cmd := exec.Command(getShell(), "-c", fullCmdStr)
	if workDir != CurrentDir {
		cmd.Dir = workDir
	}
	return cmd
}

// ExecCmd executes a command and returns its combined output
func (d *DefaultExecutor) ExecCmd(cmdStr string, workDir string, envVal []string) (string, error) {
	log := logger.Logger()
	fullCmdStr, err := GetFullCmdStr(cmdStr, workDir, envVal)
	if err != nil {
		return "", fmt.Errorf("failed to get full command string: %w", err)
	}

	output, err := newCommand(fullCmdStr, workDir).CombinedOutput()
	outputStr := string(output)

	if err != nil {
		if outputStr != "" {
			log.Debug(outputStr)
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", fullCmdStr, err)
	}
	if outputStr != "" {
		log.Debug(outputStr)
	}
	return outputStr, nil
}

// ExecCmdWithStream executes a command and logs its output line by line while it runs
func (d *DefaultExecutor) ExecCmdWithStream(cmdStr string, workDir string, envVal []string) (string, error) {
	log := logger.Logger()

	fullCmdStr, err := GetFullCmdStr(cmdStr, workDir, envVal)
	if err != nil {
		return "", fmt.Errorf("failed to get full command string: %w", err)
	}

	cmd := newCommand(fullCmdStr, workDir)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to get stdout pipe for command %s: %w", fullCmdStr, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to get stderr pipe for command %s: %w", fullCmdStr, err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start command %s: %w", fullCmdStr, err)
	}

	var (
		wg  sync.WaitGroup
		out strings.Builder
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		streamLines(stdout, func(str string) {
			out.WriteString(str)
			out.WriteString("\n")
			log.Info(str)
		})
	}()

	go func() {
		defer wg.Done()
		streamLines(stderr, func(str string) {
			log.Warn(str)
		})
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return out.String(), fmt.Errorf("failed to wait for command %s: %w", fullCmdStr, err)
	}

	return out.String(), nil
}

// maxLineSize bounds one streamed output line.
const maxLineSize = 1 << 20

// streamLines passes each non-empty line of r to emit. A line longer than
// maxLineSize stops the scan; the rest of r is discarded so the child never
// blocks on a full pipe.
func streamLines(r io.Reader, emit func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if str := scanner.Text(); str != "" {
			emit(str)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Logger().Warnf("Discarding remaining command output: %v", err)
	}
	_, _ = io.Copy(io.Discard, r)
}

// LookPath resolves cmd against PATH.
func (d *DefaultExecutor) LookPath(cmd string) (string, error) {
	return exec.LookPath(cmd)
}

// ExecCmd runs cmdStr with the Default executor.
func ExecCmd(cmdStr string, workDir string, envVal []string) (string, error) {
	return Default.ExecCmd(cmdStr, workDir, envVal)
}

// ExecCmdWithStream runs cmdStr with the Default executor, streaming output to the log.
func ExecCmdWithStream(cmdStr string, workDir string, envVal []string) (string, error) {
	return Default.ExecCmdWithStream(cmdStr, workDir, envVal)
}

// LookPath resolves cmd with the Default executor.
func LookPath(cmd string) (string, error) {
	return Default.LookPath(cmd)
}
