package tfstate

import "encoding/json"

// State 表示解析后的 terraform 状态文档
// 只声明构建 inventory 需要的字段，其余内容在解析时丢弃
type State struct {
	Version          int        `json:"version"`
	TerraformVersion string     `json:"terraform_version"`
	Serial           int        `json:"serial"`
	Lineage          string     `json:"lineage"`
	Resources        []Resource `json:"resources"`
}

// Resource 表示状态中的一个资源
type Resource struct {
	Mode      string     `json:"mode"`
	Type      string     `json:"type"`
	Name      string     `json:"name"`
	Provider  string     `json:"provider"`
	Module    string     `json:"module,omitempty"`
	Instances []Instance `json:"instances"`
}

// Instance 表示资源的一个实例
// Attributes 延迟解析：不同资源类型的属性结构不同，
// 在类型分发时再解码成对应的结构
type Instance struct {
	SchemaVersion int             `json:"schema_version"`
	Attributes    json.RawMessage `json:"attributes"`
}

// groupAttributes ansible_group 资源的属性
type groupAttributes struct {
	Name      string                 `json:"name"`
	Children  []string               `json:"children"`
	Variables map[string]interface{} `json:"variables"`
}

// hostAttributes ansible_host 资源的属性
type hostAttributes struct {
	Name      string                 `json:"name"`
	Groups    []string               `json:"groups"`
	Variables map[string]interface{} `json:"variables"`
}
