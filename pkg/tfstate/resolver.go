package tfstate

import (
	"encoding/json"

	"github.com/jimyag/tfinv/pkg/errors"
	"github.com/jimyag/tfinv/pkg/logger"
)

const (
	// AnsibleProvider ansible provider 在状态文件中的标识
	// 只有这个 provider 的资源会被解析，其他资源全部忽略
	AnsibleProvider = `provider["registry.terraform.io/ansible/ansible"]`

	// TypeGroup ansible_group 资源类型
	TypeGroup = "ansible_group"
	// TypeHost ansible_host 资源类型
	TypeHost = "ansible_host"
)

// Sink 是 resolver 写入 inventory 图的抽象接口
// inventory.Manager 实现了这个接口
type Sink interface {
	// AddHost 注册主机，按名字幂等，返回规范化的主机名
	AddHost(name string) string
	// AddGroup 注册组，按名字幂等，返回规范化的组名
	AddGroup(name string) string
	// AddChild 把 child（主机或子组）挂到 group 下
	AddChild(group, child string) error
	// SetVariable 给主机或组设置变量
	SetVariable(owner, key string, value interface{}) error
	// HasHost 判断名字是否已注册为主机
	HasHost(name string) bool
	// GroupNames 返回所有已注册的组名
	GroupNames() []string
}

// Resolver 把 terraform 状态中的 ansible 资源解析为 inventory 图
type Resolver struct {
	// Provider 可以覆盖默认的 provider 标识（比如 provider 的 fork）
	Provider string
}

// NewResolver 创建一个使用默认 provider 标识的 Resolver
func NewResolver() *Resolver {
	return &Resolver{Provider: AnsibleProvider}
}

// Resolve 单次扫描资源列表并填充 sink
//
// 组的子成员注册是延迟的：扫描到 ansible_group 时无法区分
// children 里的名字是主机还是子组（对应的资源可能在列表后面才出现），
// 所以先记下来，整个列表扫完后再统一注册
func (r *Resolver) Resolve(state *State, sink Sink) error {
	if state.Resources == nil {
		return errors.NewSchemaError("state document has no resources list")
	}

	provider := r.Provider
	if provider == "" {
		provider = AnsibleProvider
	}

	// 延迟注册的子成员：组名 -> 子成员名列表
	// map 遍历无序，单独记录组的声明顺序
	delayed := make(map[string][]string)
	delayedOrder := []string{}

	for _, resource := range state.Resources {
		if resource.Provider != provider {
			continue
		}

		for _, instance := range resource.Instances {
			switch resource.Type {
			case TypeGroup:
				var attrs groupAttributes
				if err := decodeAttributes(instance.Attributes, &attrs); err != nil {
					return err
				}
				if attrs.Name == "" {
					return errors.NewSchemaError("%s resource instance has no name", resource.Type)
				}

				group := sink.AddGroup(attrs.Name)
				if len(attrs.Children) > 0 {
					if _, ok := delayed[group]; !ok {
						delayedOrder = append(delayedOrder, group)
					}
					delayed[group] = append(delayed[group], attrs.Children...)
				}

				if err := setVariables(sink, attrs.Name, attrs.Variables); err != nil {
					return err
				}

			case TypeHost:
				var attrs hostAttributes
				if err := decodeAttributes(instance.Attributes, &attrs); err != nil {
					return err
				}
				if attrs.Name == "" {
					return errors.NewSchemaError("%s resource instance has no name", resource.Type)
				}

				host := sink.AddHost(attrs.Name)
				for _, groupName := range attrs.Groups {
					group := sink.AddGroup(groupName)

					if containsName(sink.GroupNames(), host) {
						return errors.NewConflictError(host)
					}

					if err := sink.AddChild(group, host); err != nil {
						return err
					}
				}

				if err := setVariables(sink, attrs.Name, attrs.Variables); err != nil {
					return err
				}

			default:
				// 同一 provider 下的其他资源类型直接跳过
				continue
			}
		}
	}

	// 延迟注册：到这里还没注册为主机也没注册为组的名字只能是组
	known := make(map[string]bool)
	for _, name := range sink.GroupNames() {
		known[name] = true
	}

	for _, group := range delayedOrder {
		for _, child := range delayed[group] {
			if !sink.HasHost(child) && !known[child] {
				sink.AddGroup(child)
				known[child] = true
			}

			if err := sink.AddChild(group, child); err != nil {
				return err
			}
		}
	}

	logger.Debugf("Resolved %d delayed group memberships", len(delayed))

	return nil
}

// decodeAttributes 解码资源实例的 attributes
func decodeAttributes(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return errors.NewSchemaError("resource instance has no attributes")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.NewSchemaError("failed to decode resource attributes: %v", err)
	}
	return nil
}

// setVariables 把资源上声明的变量写入 sink
func setVariables(sink Sink, owner string, variables map[string]interface{}) error {
	for key, value := range variables {
		if err := sink.SetVariable(owner, key, value); err != nil {
			return err
		}
	}
	return nil
}

// containsName 检查名字列表是否包含指定名字
func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
