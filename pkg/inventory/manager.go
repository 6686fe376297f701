package inventory

import (
	"fmt"
	"sort"
)

// Manager 持有并维护一个可变的 inventory 图
// 一次解析过程中 Manager 由调用方独占，所有变更操作都是同步生效的
type Manager struct {
	inventory *Inventory
}

// NewManager 创建一个带空图的 Manager
func NewManager() *Manager {
	return &Manager{inventory: NewInventory()}
}

// Inventory 返回底层的 inventory 图
func (m *Manager) Inventory() *Inventory {
	return m.inventory
}

// AddHost 注册主机，按名字幂等，返回规范化的主机名
// 新主机先挂在 ungrouped 下，加入其他组后移出
func (m *Manager) AddHost(name string) string {
	host, exists := m.inventory.Hosts[name]
	if !exists {
		host = &Host{
			Name:   name,
			Vars:   make(map[string]interface{}),
			Groups: []string{},
		}
		m.inventory.Hosts[name] = host

		ungrouped := m.inventory.Groups[UngroupedGroup]
		if !contains(ungrouped.Hosts, name) {
			ungrouped.Hosts = append(ungrouped.Hosts, name)
		}
	}
	return host.Name
}

// AddGroup 注册组，按名字幂等，返回规范化的组名
// 新组默认挂在 all 下
func (m *Manager) AddGroup(name string) string {
	group, exists := m.inventory.Groups[name]
	if !exists {
		group = newGroup(name)
		group.Parents = append(group.Parents, AllGroup)
		m.inventory.Groups[name] = group

		all := m.inventory.Groups[AllGroup]
		if !contains(all.Children, name) {
			all.Children = append(all.Children, name)
		}
	}
	return group.Name
}

// AddChild 把 child 挂到 group 下
// child 必须是已注册的主机或组，主机入组后从 ungrouped 移出
func (m *Manager) AddChild(groupName, childName string) error {
	group, exists := m.inventory.Groups[groupName]
	if !exists {
		return fmt.Errorf("group not found: %s", groupName)
	}

	if host, ok := m.inventory.Hosts[childName]; ok {
		if !contains(group.Hosts, childName) {
			group.Hosts = append(group.Hosts, childName)
		}
		if !contains(host.Groups, groupName) {
			host.Groups = append(host.Groups, groupName)
		}
		m.removeFromUngrouped(childName)
		return nil
	}

	if child, ok := m.inventory.Groups[childName]; ok {
		if !contains(group.Children, childName) {
			group.Children = append(group.Children, childName)
		}
		if !contains(child.Parents, groupName) {
			child.Parents = append(child.Parents, groupName)
		}
		return nil
	}

	return fmt.Errorf("child not found: %s", childName)
}

// SetVariable 给主机或组设置变量，主机优先
func (m *Manager) SetVariable(owner, key string, value interface{}) error {
	if host, ok := m.inventory.Hosts[owner]; ok {
		host.Vars[key] = value
		return nil
	}
	if group, ok := m.inventory.Groups[owner]; ok {
		group.Vars[key] = value
		return nil
	}
	return fmt.Errorf("cannot set variable %s: no host or group named %s", key, owner)
}

// HasHost 判断名字是否已注册为主机
func (m *Manager) HasHost(name string) bool {
	_, exists := m.inventory.Hosts[name]
	return exists
}

// HasGroup 判断名字是否已注册为组
func (m *Manager) HasGroup(name string) bool {
	_, exists := m.inventory.Groups[name]
	return exists
}

// GroupNames 返回所有组名（排序后）
func (m *Manager) GroupNames() []string {
	names := make([]string, 0, len(m.inventory.Groups))
	for name := range m.inventory.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HostNames 返回所有主机名（排序后）
func (m *Manager) HostNames() []string {
	names := make([]string, 0, len(m.inventory.Hosts))
	for name := range m.inventory.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetHost 获取单个主机
func (m *Manager) GetHost(name string) (*Host, error) {
	host, exists := m.inventory.Hosts[name]
	if !exists {
		return nil, fmt.Errorf("host not found: %s", name)
	}
	return host, nil
}

// GetGroup 获取组
func (m *Manager) GetGroup(name string) (*Group, error) {
	group, exists := m.inventory.Groups[name]
	if !exists {
		return nil, fmt.Errorf("group not found: %s", name)
	}
	return group, nil
}

// GetHosts 根据模式获取主机列表
// 模式是组名，all 返回所有主机
func (m *Manager) GetHosts(pattern string) ([]*Host, error) {
	var hosts []*Host

	switch pattern {
	case AllGroup:
		for _, name := range m.HostNames() {
			hosts = append(hosts, m.inventory.Hosts[name])
		}
	default:
		group, exists := m.inventory.Groups[pattern]
		if !exists {
			return nil, fmt.Errorf("group not found: %s", pattern)
		}

		// 收集组中的所有主机（包括子组）
		for _, hostname := range m.collectGroupHosts(group) {
			if host, exists := m.inventory.Hosts[hostname]; exists {
				hosts = append(hosts, host)
			}
		}
	}

	if len(hosts) == 0 {
		return nil, fmt.Errorf("no hosts matched pattern: %s", pattern)
	}

	return hosts, nil
}

// collectGroupHosts 递归收集组中的所有主机
func (m *Manager) collectGroupHosts(group *Group) []string {
	hostnames := make([]string, 0)
	seen := make(map[string]bool)
	visited := make(map[string]bool)

	var collect func(*Group)
	collect = func(g *Group) {
		if visited[g.Name] {
			return
		}
		visited[g.Name] = true

		for _, hostname := range g.Hosts {
			if !seen[hostname] {
				hostnames = append(hostnames, hostname)
				seen[hostname] = true
			}
		}

		for _, childName := range g.Children {
			if child, exists := m.inventory.Groups[childName]; exists {
				collect(child)
			}
		}
	}

	collect(group)
	return hostnames
}

// removeFromUngrouped 把主机从 ungrouped 组移出
func (m *Manager) removeFromUngrouped(hostname string) {
	ungrouped := m.inventory.Groups[UngroupedGroup]
	for i, name := range ungrouped.Hosts {
		if name == hostname {
			ungrouped.Hosts = append(ungrouped.Hosts[:i], ungrouped.Hosts[i+1:]...)
			return
		}
	}
}

// contains 检查切片是否包含元素
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
