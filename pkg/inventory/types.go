package inventory

const (
	// AllGroup 所有主机的隐式根组
	AllGroup = "all"
	// UngroupedGroup 还没有加入任何组的主机所在的隐式组
	UngroupedGroup = "ungrouped"
)

// Host 表示一个主机
type Host struct {
	Name   string                 // Inventory hostname (alias)
	Vars   map[string]interface{} // 包含 ansible_host, ansible_port 等
	Groups []string               // 所属组名
}

// Group 表示一个主机组
type Group struct {
	Name     string
	Hosts    []string // 主机名列表
	Children []string // 子组名列表
	Vars     map[string]interface{}
	Parents  []string // 父组名列表
}

// Inventory 表示整个 inventory 图
type Inventory struct {
	Hosts  map[string]*Host
	Groups map[string]*Group
}

// NewInventory 创建一个新的 Inventory
// 和 ansible 一样，all 和 ungrouped 两个隐式组总是存在
func NewInventory() *Inventory {
	inv := &Inventory{
		Hosts:  make(map[string]*Host),
		Groups: make(map[string]*Group),
	}

	inv.Groups[AllGroup] = newGroup(AllGroup)

	ungrouped := newGroup(UngroupedGroup)
	ungrouped.Parents = append(ungrouped.Parents, AllGroup)
	inv.Groups[UngroupedGroup] = ungrouped
	inv.Groups[AllGroup].Children = append(inv.Groups[AllGroup].Children, UngroupedGroup)

	return inv
}

// newGroup 创建一个空组
func newGroup(name string) *Group {
	return &Group{
		Name:     name,
		Hosts:    []string{},
		Children: []string{},
		Vars:     make(map[string]interface{}),
		Parents:  []string{},
	}
}
