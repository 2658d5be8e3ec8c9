package main_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

const fixtureCSV = `Organization,Service,Service URL,Description,Minimum age,Commitment,Max group size,Recommended for
Harvest,Food bank,https://example.org/food,Sort donations,16,Low,10,"individuals, groups"
Parks,Trail care,,Clear trails,,High,25,families
Library,Reading buddy,https://example.org/read,Read with kids,8,Medium,1,individuals
`

// buildVtBinary compiles cmd/vt into a temp dir and returns its path
func buildVtBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e build in short mode")
	}
	binPath := filepath.Join(t.TempDir(), "vt")
	build := exec.Command("go", "build", "-o", binPath, "../../cmd/vt")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("Build failed: %v\n%s", err, out)
	}
	return binPath
}

// fixtureDir returns a project directory holding data.csv
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "data.csv"), []byte(fixtureCSV), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func runVt(t *testing.T, bin, dir string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "VT_CONFIG_DIR="+filepath.Join(dir, ".vt"))
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), exitErr.ExitCode()
	}
	if err != nil {
		t.Fatalf("run vt %v: %v", args, err)
	}
	return string(out), 0
}

func TestEndToEndBuildAndRun(t *testing.T) {
	bin := buildVtBinary(t)
	dir := fixtureDir(t)

	out, code := runVt(t, bin, dir, "version")
	if code != 0 || !strings.HasPrefix(out, "vt ") {
		t.Fatalf("version: code=%d out=%q", code, out)
	}

	// data.csv in the working directory is found without --data
	out, code = runVt(t, bin, dir, "list", "--json", "--filter", "Group size=21+")
	if code != 0 {
		t.Fatalf("list exited %d", code)
	}
	var payload struct {
		Total   int                 `json:"total"`
		Visible int                 `json:"visible"`
		Records []map[string]string `json:"records"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode list output: %v\n%s", err, out)
	}
	if payload.Total != 3 || payload.Visible != 1 || payload.Records[0]["Service"] != "Trail care" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestEndToEndExportMarkdown(t *testing.T) {
	bin := buildVtBinary(t)
	dir := fixtureDir(t)

	out, code := runVt(t, bin, dir, "export", "--format", "md", "--recipe", "low-commitment")
	if code != 0 {
		t.Fatalf("export exited %d", code)
	}
	for _, want := range []string{"Showing **1** of 3 opportunities.", "[Food bank](https://example.org/food)", "## Summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestEndToEndExitCodes(t *testing.T) {
	bin := buildVtBinary(t)
	dir := fixtureDir(t)

	if _, code := runVt(t, bin, dir, "list", "--sort", "Description"); code != 1 {
		t.Errorf("unsortable column: exit %d, want 1", code)
	}
	if _, code := runVt(t, bin, dir, "list", "--recipe", "missing"); code != 1 {
		t.Errorf("unknown recipe: exit %d, want 1", code)
	}
	// A bad data source still renders an empty table
	out, code := runVt(t, bin, dir, "list", "--data", filepath.Join(dir, "nope.csv"))
	if code != 0 || !strings.Contains(out, "0 of 0 opportunities") {
		t.Errorf("missing data: exit %d, out %q", code, out)
	}
}
