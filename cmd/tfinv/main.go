package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/jimyag/tfinv/pkg/config"
	"github.com/jimyag/tfinv/pkg/connection"
	"github.com/jimyag/tfinv/pkg/inventory"
	"github.com/jimyag/tfinv/pkg/logger"
	"github.com/jimyag/tfinv/pkg/tfstate"
)

func main() {
	// 定义命令行参数
	workDir := flag.String("C", "", "Terraform working directory (default: current directory)")
	configPath := flag.String("config", config.DefaultFileName, "Path to config file")
	list := flag.Bool("list", false, "Output the full inventory (dynamic inventory --list)")
	hostName := flag.String("host", "", "Output variables for a single host (dynamic inventory --host)")
	format := flag.String("format", "", "Output format: json, yaml or ini")
	templatePath := flag.String("template", "", "Render inventory through a Go template file")
	outputPath := flag.String("o", "", "Write output to file instead of stdout")
	ping := flag.Bool("ping", false, "Check SSH reachability of resolved hosts")
	pattern := flag.String("pattern", "all", "Host pattern for -ping")
	verbose := flag.Bool("v", false, "Verbose mode")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志系统，stdout 留给 inventory 输出
	logLevel := logger.LogLevel(cfg.LogLevel)
	if *verbose {
		logLevel = logger.DebugLevel
	}
	logger.Init(&logger.Config{
		Level:  logLevel,
		Output: os.Stderr,
		Pretty: true,
	})

	if *workDir != "" {
		cfg.StateDir = *workDir
	}
	if *format != "" {
		cfg.Format = *format
	}

	// 定位并解析 terraform 状态
	locator := tfstate.NewLocator(cfg.StateDir)
	state, err := locator.Locate()
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	// 解析为 inventory 图
	resolver := tfstate.NewResolver()
	if cfg.Provider != "" {
		resolver.Provider = cfg.Provider
	}

	invMgr := inventory.NewManager()
	if err := resolver.Resolve(state, invMgr); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	logger.Debugf("Resolved %d hosts and %d groups from state",
		len(invMgr.Inventory().Hosts), len(invMgr.Inventory().Groups))

	if *ping {
		os.Exit(pingHosts(invMgr, *pattern))
	}

	// 生成输出
	var output []byte
	switch {
	case *hostName != "":
		output, err = invMgr.MarshalHost(*hostName)
	case *templatePath != "":
		output, err = invMgr.RenderTemplate(*templatePath)
	case *list || flag.NArg() == 0:
		output, err = marshalInventory(invMgr, cfg.Format)
	default:
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	if *outputPath != "" {
		if err := inventory.WriteFile(*outputPath, output); err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(string(output))
}

// marshalInventory 按格式序列化整个 inventory
func marshalInventory(invMgr *inventory.Manager, format string) ([]byte, error) {
	switch format {
	case "", "json":
		return invMgr.MarshalList()
	case "yaml":
		return invMgr.MarshalYAML()
	case "ini":
		return invMgr.MarshalINI()
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// pingResult 单个主机的探测结果
type pingResult struct {
	host string
	err  error
}

// pingHosts 并发检查主机可达性，返回进程退出码
func pingHosts(invMgr *inventory.Manager, pattern string) int {
	hosts, err := invMgr.GetHosts(pattern)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	connMgr := connection.NewManager()
	results := make(chan pingResult, len(hosts))
	var wg sync.WaitGroup

	for _, host := range hosts {
		wg.Add(1)
		go func(h *inventory.Host) {
			defer wg.Done()
			results <- pingResult{host: h.Name, err: pingHost(connMgr, h)}
		}(host)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	all := []pingResult{}
	for result := range results {
		all = append(all, result)
	}

	// 按主机名排序输出
	sort.Slice(all, func(i, j int) bool {
		return all[i].host < all[j].host
	})

	hasFailure := false
	for _, result := range all {
		if result.err != nil {
			hasFailure = true
			fmt.Printf("%s | \033[31mUNREACHABLE\033[0m => %v\n", result.host, result.err)
			continue
		}
		fmt.Printf("%s | \033[32mSUCCESS\033[0m => ping\n", result.host)
	}

	if hasFailure {
		return 2
	}
	return 0
}

// pingHost 连接单个主机并探测
func pingHost(connMgr *connection.Manager, host *inventory.Host) error {
	conn, err := connMgr.Connect(host)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.Ping()
}
