package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// dynamicGroup 动态 inventory JSON 里的一个组
type dynamicGroup struct {
	Hosts    []string               `json:"hosts,omitempty"`
	Children []string               `json:"children,omitempty"`
	Vars     map[string]interface{} `json:"vars,omitempty"`
}

// MarshalList 生成 ansible 动态 inventory 的 --list JSON
// 主机变量统一放在 _meta.hostvars 下，ansible 就不会再对每个主机调 --host
func (m *Manager) MarshalList() ([]byte, error) {
	out := make(map[string]interface{})

	hostvars := make(map[string]map[string]interface{})
	for name, host := range m.inventory.Hosts {
		hostvars[name] = host.Vars
	}
	out["_meta"] = map[string]interface{}{"hostvars": hostvars}

	for name, group := range m.inventory.Groups {
		out[name] = dynamicGroup{
			Hosts:    sortedCopy(group.Hosts),
			Children: sortedCopy(group.Children),
			Vars:     group.Vars,
		}
	}

	return json.MarshalIndent(out, "", "  ")
}

// MarshalHost 生成 --host 的 JSON（单个主机的变量）
func (m *Manager) MarshalHost(name string) ([]byte, error) {
	host, err := m.GetHost(name)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(host.Vars, "", "  ")
}

// MarshalYAML 生成 ansible YAML inventory 文档
// 从 all 开始递归展开组层级
func (m *Manager) MarshalYAML() ([]byte, error) {
	doc := map[string]interface{}{
		AllGroup: m.yamlGroup(m.inventory.Groups[AllGroup], make(map[string]bool)),
	}
	return yaml.Marshal(doc)
}

// yamlGroup 构建单个组的 YAML 结构
func (m *Manager) yamlGroup(group *Group, visited map[string]bool) map[string]interface{} {
	node := make(map[string]interface{})
	if visited[group.Name] {
		return node
	}
	visited[group.Name] = true

	if len(group.Hosts) > 0 {
		hosts := make(map[string]interface{})
		for _, hostname := range sortedCopy(group.Hosts) {
			if host, ok := m.inventory.Hosts[hostname]; ok && len(host.Vars) > 0 {
				hosts[hostname] = host.Vars
			} else {
				hosts[hostname] = nil
			}
		}
		node["hosts"] = hosts
	}

	if len(group.Children) > 0 {
		children := make(map[string]interface{})
		for _, childName := range sortedCopy(group.Children) {
			if child, ok := m.inventory.Groups[childName]; ok {
				children[childName] = m.yamlGroup(child, visited)
			}
		}
		node["children"] = children
	}

	if len(group.Vars) > 0 {
		node["vars"] = group.Vars
	}

	return node
}

// MarshalINI 生成 INI 格式的 inventory 文本
// ungrouped 的主机放在文件开头，其余每个组一个 section
func (m *Manager) MarshalINI() ([]byte, error) {
	var buf bytes.Buffer

	ungrouped := m.inventory.Groups[UngroupedGroup]
	for _, hostname := range sortedCopy(ungrouped.Hosts) {
		buf.WriteString(m.iniHostLine(hostname))
	}
	if len(ungrouped.Hosts) > 0 {
		buf.WriteString("\n")
	}

	for _, name := range m.GroupNames() {
		if name == AllGroup || name == UngroupedGroup {
			continue
		}
		group := m.inventory.Groups[name]

		buf.WriteString(fmt.Sprintf("[%s]\n", name))
		for _, hostname := range sortedCopy(group.Hosts) {
			buf.WriteString(m.iniHostLine(hostname))
		}
		buf.WriteString("\n")

		if len(group.Children) > 0 {
			buf.WriteString(fmt.Sprintf("[%s:children]\n", name))
			for _, childName := range sortedCopy(group.Children) {
				buf.WriteString(childName + "\n")
			}
			buf.WriteString("\n")
		}

		if len(group.Vars) > 0 {
			buf.WriteString(fmt.Sprintf("[%s:vars]\n", name))
			for _, key := range sortedKeys(group.Vars) {
				buf.WriteString(fmt.Sprintf("%s=%v\n", key, group.Vars[key]))
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// iniHostLine 生成主机行，标量变量内联输出
func (m *Manager) iniHostLine(hostname string) string {
	host, ok := m.inventory.Hosts[hostname]
	if !ok {
		return hostname + "\n"
	}

	parts := []string{hostname}
	for _, key := range sortedKeys(host.Vars) {
		switch v := host.Vars[key].(type) {
		case string, bool, int, int64, float64, json.Number:
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		default:
			// 复杂类型（列表、嵌套对象）没有 INI 表示，跳过
		}
	}
	return strings.Join(parts, " ") + "\n"
}

// TemplateContext 自定义模板的渲染上下文
type TemplateContext struct {
	Hosts  map[string]*Host
	Groups map[string]*Group
}

// RenderTemplate 用带 sprig 函数的 go template 渲染 inventory
func (m *Manager) RenderTemplate(templatePath string) ([]byte, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", templatePath, err)
	}

	tmpl, err := template.New(filepath.Base(templatePath)).
		Funcs(sprig.TxtFuncMap()).
		Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templatePath, err)
	}

	var buf bytes.Buffer
	ctx := TemplateContext{
		Hosts:  m.inventory.Hosts,
		Groups: m.inventory.Groups,
	}
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", templatePath, err)
	}

	return buf.Bytes(), nil
}

// WriteFile 原子地写出 inventory 文件
// 先写到同目录的唯一临时文件再 rename，避免读到半截内容
func WriteFile(path string, data []byte) error {
	tmpPath := fmt.Sprintf("%s.%s.tmp", path, uuid.New().String())

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}

	return nil
}

// sortedCopy 返回排序后的副本
func sortedCopy(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	sort.Strings(out)
	return out
}

// sortedKeys 返回 map 排序后的 key 列表
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
