package ztest

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RunShell runs script with "bash -e -o pipefail" in dir.  path is
// prepended to PATH so that the script finds the executables under test.
func RunShell(ctx context.Context, dir, path, script string, stdin io.Reader, env []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "bash", "-e", "-o", "pipefail")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Env = append(cmd.Env, "PATH="+joinPath(path, os.Getenv("PATH")))
	cmd.Stdin = strings.NewReader(script)
	if stdin != nil {
		// Hand the script to bash as a file so stdin is free for the
		// commands it runs.
		name := filepath.Join(dir, ".ztest.sh")
		if err := os.WriteFile(name, []byte(script), 0644); err != nil {
			return "", "", err
		}
		cmd.Args = append(cmd.Args, name)
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func joinPath(dirs ...string) string {
	var out []string
	for _, d := range dirs {
		for _, p := range filepath.SplitList(d) {
			if p == "" {
				continue
			}
			if abs, err := filepath.Abs(p); err == nil {
				p = abs
			}
			out = append(out, p)
		}
	}
	return strings.Join(out, string(filepath.ListSeparator))
}
