package e2e

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

var (
	dirtreeBin string
	projRoot   string
	baseDir    string
)

const defaultScriptOutput = `
  fruits
    apples
      fuji
  vegetables
  grains

  foods
    grains
    fruits
      apples
        fuji
    vegetables
      squash

  foods
    grains
    fruits
    vegetables
      squash
`

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	// Build the binary once for all tests
	tmpBinDir, err := os.MkdirTemp("", "dirtree-bin")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpBinDir) // nolint:errcheck

	dirtreeBin = filepath.Join(tmpBinDir, "dirtree")

	// Determine project root
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot determine current file path")
	}
	projRoot = filepath.Join(filepath.Dir(thisFile), "..", "..")
	src := filepath.Join(projRoot, "cmd", "main.go")

	cmd := exec.Command("go", "build", "-o", dirtreeBin, src)
	cmd.Dir = projRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic(string(out))
	}

	baseDir, err = os.MkdirTemp("", "dirtree-e2e-tests")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(baseDir) // nolint:errcheck

	return m.Run()
}

func TestE2EDefaultScript(t *testing.T) {
	stdout, stderr, err := runOnce(t, "", "-v", "2")
	if err != nil {
		t.Fatalf("run failed: %v\nstderr: %s", err, stderr)
	}
	if stdout != defaultScriptOutput {
		t.Fatalf("output mismatch:\nexpected:\n%s\ngot:\n%s", defaultScriptOutput, stdout)
	}
	// The only warning comes from deleting fruits/apples after it moved
	if !strings.Contains(stderr, "Cannot delete directory") {
		t.Fatalf("expected delete warning in stderr, got:\n%s", stderr)
	}
}

func TestE2EStdinScript(t *testing.T) {
	script := strings.Join([]string{
		"# comment lines are skipped",
		"CREATE a b c",
		"FLY a",
		"MOVE missing a",
		"MOVE a/b /",
		"LIST",
	}, "\n")

	stdout, stderr, err := runOnce(t, script, "-s", "-")
	if err != nil {
		t.Fatalf("run failed: %v\nstderr: %s", err, stderr)
	}
	if expected := "\n  a\n  b\n    c\n"; stdout != expected {
		t.Fatalf("output mismatch:\nexpected: %q\ngot:      %q", expected, stdout)
	}
	if strings.Count(stderr, "Command failed") != 2 {
		t.Fatalf("expected two failed commands in stderr, got:\n%s", stderr)
	}
}

func TestE2EStopOnError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("continue_on_error: false\nindent: \"--\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	scriptPath := filepath.Join(dir, "script.yaml")
	script := `
- action: CREATE
  path: "with space/inner"
- action: LIST
- action: MOVE
  source: nope
  dest: with space
- action: LIST
`
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := runOnce(t, "", "-c", cfgPath, "-s", scriptPath)
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %v\nstderr: %s", err, stderr)
	}
	if expected := "\n--with space\n----inner\n"; stdout != expected {
		t.Fatalf("output mismatch:\nexpected: %q\ngot:      %q", expected, stdout)
	}
}

func TestE2EHTTP(t *testing.T) {
	addr := freeAddr(t)
	inst := start(t, "--http", addr)
	defer inst.Stop()

	base := "http://" + addr
	if err := waitFor(10*time.Second, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}); err != nil {
		stdout, stderr := inst.GetLogs()
		t.Fatalf("HTTP API not ready: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}

	resp, err := http.Post(base+"/api/dirs", "application/json", strings.NewReader(`{"path":"foods/dairy"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/api/tree")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	expected := "\n  foods\n    grains\n    fruits\n    vegetables\n      squash\n    dairy"
	if string(body) != expected {
		t.Fatalf("tree mismatch:\nexpected: %q\ngot:      %q", expected, string(body))
	}
}

func TestE2EMountAndList(t *testing.T) {
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("FUSE not available")
	}
	if _, err := exec.LookPath("fusermount"); err != nil {
		t.Skip("fusermount not available")
	}

	mountDir := filepath.Join(baseDir, "mount-"+strings.ReplaceAll(t.Name(), "/", "_"))
	if err := os.MkdirAll(mountDir, 0o755); err != nil {
		t.Fatalf("Failed to create mount dir: %v", err)
	}
	inst := start(t, "-m", mountDir, "-u")
	inst.MountDir = mountDir
	defer inst.Stop()

	if err := inst.WaitForMount(15 * time.Second); err != nil {
		stdout, stderr := inst.GetLogs()
		t.Fatalf("mount failed: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}

	// os.ReadDir sorts by name
	entries, err := os.ReadDir(filepath.Join(mountDir, "foods"))
	if err != nil {
		t.Fatalf("failed to read mounted dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			t.Errorf("expected %s to be a directory", e.Name())
		}
		names = append(names, e.Name())
	}
	if got := strings.Join(names, ","); got != "fruits,grains,vegetables" {
		t.Fatalf("unexpected entries: %s", got)
	}

	if err := os.Mkdir(filepath.Join(mountDir, "new"), 0o755); err == nil {
		t.Fatal("expected read-only mount to reject mkdir")
	}
}

// DirtreeInstance is a running dirtree process
type DirtreeInstance struct {
	cmd      *exec.Cmd
	MountDir string
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

// runOnce runs the binary to completion with stdin as its input
func runOnce(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := exec.Command(dirtreeBin, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// start launches a long running instance with the default script
func start(t *testing.T, args ...string) *DirtreeInstance {
	t.Helper()
	cmd := exec.Command(dirtreeBin, append([]string{"-v", "4"}, args...)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start dirtree: %v", err)
	}
	return &DirtreeInstance{cmd: cmd, stdout: &stdout, stderr: &stderr}
}

// Stop gracefully stops the instance
func (d *DirtreeInstance) Stop() {
	if d.cmd == nil || d.cmd.Process == nil {
		return
	}
	// Send interrupt signal
	_ = d.cmd.Process.Signal(os.Interrupt) // Process may have already exited

	// Wait for graceful shutdown with timeout
	done := make(chan error, 1)
	go func() {
		done <- d.cmd.Wait()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		// Force kill if graceful shutdown takes too long
		_ = d.cmd.Process.Kill()
		<-done
		if d.MountDir != "" {
			_ = exec.Command("fusermount", "-u", d.MountDir).Run()
		}
	}
}

// WaitForMount waits until the mount shows the tree's top-level directories
func (d *DirtreeInstance) WaitForMount(timeout time.Duration) error {
	return waitFor(timeout, func() bool {
		files, err := os.ReadDir(d.MountDir)
		return err == nil && len(files) > 0
	})
}

// GetLogs returns the stdout and stderr of the process
func (d *DirtreeInstance) GetLogs() (stdout, stderr string) {
	return d.stdout.String(), d.stderr.String()
}

func waitFor(timeout time.Duration, ready func() bool) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if ready() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timeout after %s", timeout)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}
