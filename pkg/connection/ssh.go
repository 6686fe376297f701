package connection

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/jimyag/tfinv/pkg/inventory"
)

// Connection 表示一个 SSH 连接
type Connection struct {
	client *ssh.Client
	host   *inventory.Host
}

// Manager 管理 SSH 连接
type Manager struct {
	timeout time.Duration
}

// NewManager 创建一个新的连接管理器
func NewManager() *Manager {
	return &Manager{
		timeout: 30 * time.Second,
	}
}

// Connect 连接到主机
// 连接参数从主机变量读取，和 ansible 的约定一致
func (m *Manager) Connect(host *inventory.Host) (*Connection, error) {
	ansibleHost := stringVar(host, "ansible_host")
	if ansibleHost == "" {
		ansibleHost = host.Name
	}

	port := 22
	if portStr := stringVar(host, "ansible_port"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	} else if portNum, ok := host.Vars["ansible_port"].(float64); ok {
		// JSON 数字解码出来是 float64
		port = int(portNum)
	}

	user := stringVar(host, "ansible_user")
	if user == "" {
		user = "root"
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         m.timeout,
	}

	if password := stringVar(host, "ansible_password"); password != "" {
		config.Auth = append(config.Auth, ssh.Password(password))
	}

	if keyFile := stringVar(host, "ansible_ssh_private_key_file"); keyFile != "" {
		if auth, err := publicKeyAuth(keyFile); err == nil {
			config.Auth = append(config.Auth, auth)
		}
	}

	// 没有指定认证方式时尝试默认密钥
	if len(config.Auth) == 0 {
		for _, name := range []string{"id_ed25519", "id_rsa"} {
			keyPath := filepath.Join(os.Getenv("HOME"), ".ssh", name)
			if auth, err := publicKeyAuth(keyPath); err == nil {
				config.Auth = append(config.Auth, auth)
				break
			}
		}
	}

	addr := fmt.Sprintf("%s:%d", ansibleHost, port)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return &Connection{client: client, host: host}, nil
}

// Ping 检查连接是否可用
func (c *Connection) Ping() error {
	session, err := c.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	if err := session.Run("true"); err != nil {
		return fmt.Errorf("failed to run command: %w", err)
	}

	return nil
}

// Close 关闭连接
func (c *Connection) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// publicKeyAuth 从私钥文件构建认证方式
func publicKeyAuth(keyFile string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return ssh.PublicKeys(signer), nil
}

// stringVar 读取主机的字符串变量
func stringVar(host *inventory.Host, name string) string {
	value, _ := host.Vars[name].(string)
	return value
}
