package shell_test

import (
	"bytes"
	"errors"
	"os/exec"
	"testing"
)

// runBash executes script with bash and returns stdout and the exit status.
func runBash(t *testing.T, script string) (string, int) {
	t.Helper()
	bash, err := exec.LookPath("bash")
	if err != nil {
		t.Skip("bash not available")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(bash, "-c", script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err = cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stdout.String(), 0
	case errors.As(err, &exitErr):
		return stdout.String(), exitErr.ExitCode()
	default:
		t.Fatalf("failed to run bash: %v (stderr: %s)", err, stderr.String())
		return "", -1
	}
}
