package tfstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimyag/tfinv/pkg/errors"
	"github.com/jimyag/tfinv/pkg/logger"
)

const (
	// DefaultWorkspace terraform 的默认 workspace 名
	DefaultWorkspace = "default"
	// StateFileName 状态文件名
	StateFileName = "terraform.tfstate"
	// environmentFile 记录当前激活 workspace 的标记文件
	environmentFile = ".terraform/environment"
	// workspaceStateDir 非默认 workspace 的状态目录
	workspaceStateDir = "terraform.tfstate.d"
)

// Locator 定位并读取 terraform 状态文件
type Locator struct {
	WorkDir string
}

// NewLocator 创建一个 Locator
func NewLocator(workDir string) *Locator {
	return &Locator{WorkDir: workDir}
}

// Workspace 读取当前激活的 workspace 名
// 没有标记文件时返回空字符串
func (l *Locator) Workspace() string {
	data, err := os.ReadFile(filepath.Join(l.WorkDir, environmentFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// StatePath 计算状态文件路径，返回路径和 workspace 名
// 非默认 workspace 的状态在 terraform.tfstate.d/<workspace>/ 下
func (l *Locator) StatePath() (string, string) {
	workspace := l.Workspace()
	statePath := filepath.Join(l.WorkDir, StateFileName)
	if workspace != "" && workspace != DefaultWorkspace {
		statePath = filepath.Join(l.WorkDir, workspaceStateDir, workspace, StateFileName)
	}
	return statePath, workspace
}

// Locate 定位、读取并解析状态文件
// 这里不走 terraform show，直接读文件可以省掉 terraform 命令固定的启动开销
func (l *Locator) Locate() (*State, error) {
	statePath, workspace := l.StatePath()

	absPath, err := filepath.Abs(statePath)
	if err != nil {
		absPath = statePath
	}

	if _, err := os.Stat(statePath); err != nil {
		return nil, errors.NewStateNotFoundError(absPath, workspace)
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.NewStateParseError(absPath, err)
	}

	logger.Debugf("Loading terraform state from %s", statePath)

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.NewStateParseError(absPath, err)
	}

	return &state, nil
}
