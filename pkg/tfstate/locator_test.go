package tfstate

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jimyag/tfinv/pkg/errors"
)

const emptyState = `{"version": 4, "terraform_version": "1.9.0", "resources": []}`

// writeFile 写测试文件，自动创建父目录
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		wantErr errors.ErrorType
		check   func(t *testing.T, state *State)
	}{
		{
			name: "default state file",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, "terraform.tfstate"), emptyState)
			},
			wantErr: -1,
			check: func(t *testing.T, state *State) {
				if state.Version != 4 {
					t.Errorf("Expected version 4, got %d", state.Version)
				}
				if state.Resources == nil || len(state.Resources) != 0 {
					t.Errorf("Expected empty resources list, got %v", state.Resources)
				}
			},
		},
		{
			name: "default workspace uses default path",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, ".terraform", "environment"), "default")
				writeFile(t, filepath.Join(dir, "terraform.tfstate"), emptyState)
			},
			wantErr: -1,
		},
		{
			name: "workspace state file",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, ".terraform", "environment"), "staging")
				writeFile(t, filepath.Join(dir, "terraform.tfstate.d", "staging", "terraform.tfstate"), emptyState)
			},
			wantErr: -1,
		},
		{
			name: "workspace marker with trailing newline",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, ".terraform", "environment"), "staging\n")
				writeFile(t, filepath.Join(dir, "terraform.tfstate.d", "staging", "terraform.tfstate"), emptyState)
			},
			wantErr: -1,
		},
		{
			name:    "missing state file",
			setup:   func(t *testing.T, dir string) {},
			wantErr: errors.ErrStateNotFound,
		},
		{
			name: "missing workspace state file",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, ".terraform", "environment"), "staging")
				// 默认路径上有状态文件也不应该被用到
				writeFile(t, filepath.Join(dir, "terraform.tfstate"), emptyState)
			},
			wantErr: errors.ErrStateNotFound,
		},
		{
			name: "invalid json",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, "terraform.tfstate"), "{not json")
			},
			wantErr: errors.ErrStateParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			state, err := NewLocator(dir).Locate()
			if tt.wantErr >= 0 {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !errors.IsType(err, tt.wantErr) {
					t.Errorf("Expected error type %d, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Locate() error = %v", err)
			}
			if tt.check != nil {
				tt.check(t, state)
			}
		})
	}
}

func TestLocateErrorDetails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".terraform", "environment"), "staging")

	_, err := NewLocator(dir).Locate()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	// 错误信息必须包含 workspace 名和期望的绝对路径
	wantPath, _ := filepath.Abs(filepath.Join(dir, "terraform.tfstate.d", "staging", "terraform.tfstate"))
	if !strings.Contains(err.Error(), "staging") {
		t.Errorf("Expected error to mention workspace staging, got: %v", err)
	}
	if !strings.Contains(err.Error(), wantPath) {
		t.Errorf("Expected error to mention path %s, got: %v", wantPath, err)
	}

	var invErr *errors.InventoryError
	if !stderrors.As(err, &invErr) {
		t.Fatalf("Expected InventoryError, got %T", err)
	}
	if invErr.Workspace != "staging" {
		t.Errorf("Expected workspace staging, got %s", invErr.Workspace)
	}
	if invErr.Path != wantPath {
		t.Errorf("Expected path %s, got %s", wantPath, invErr.Path)
	}
}

func TestLocateMissingDefaultErrorHasNoWorkspace(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLocator(dir).Locate()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if strings.Contains(err.Error(), "workspace") {
		t.Errorf("Expected no workspace in error, got: %v", err)
	}
}
