// Command vcpu loads a flat binary image and runs it on the virtual CPU.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lookbusy1344/armv7-vcpu/config"
	"github.com/lookbusy1344/armv7-vcpu/vm"
)

// Version information; overridden at build time with
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		configPath  = flag.String("config", "", "Path to config.toml (default: platform config dir)")
		localSize   = flag.Uint("local-size", 0, "Local memory size in bytes (0: use config default)")
		remoteSize  = flag.Uint("remote-size", 0, "Remote memory size in bytes (0: use config default)")
		entryStr    = flag.String("entry", "", "Entry point address, hex with 0x prefix or decimal (empty: use config default)")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum CPU cycles before halt (0: use config default)")
		verbose     = flag.Bool("verbose", false, "Print final register state after run")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("vcpu %s (%s)\n", Version, Commit)
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: vcpu [flags] <image-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcpu: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(cfg, *localSize, *remoteSize, *entryStr, *maxCycles)

	image, err := os.ReadFile(flag.Arg(0)) // #nosec G304 -- user-supplied image path
	if err != nil {
		fmt.Fprintf(os.Stderr, "vcpu: reading image: %v\n", err)
		os.Exit(1)
	}

	var remote vm.RemoteLink
	if cfg.Remote.Enabled {
		fmt.Fprintln(os.Stderr, "vcpu: remote memory link requested but no serial device is wired in this build")
		os.Exit(1)
	}

	mem := vm.NewMemory(cfg.Memory.LocalSize, cfg.Memory.RemoteSize, remote)
	machine := vm.NewVM(mem)
	machine.MaxCycles = cfg.Execution.MaxCycles

	if err := machine.LoadImage(image, cfg.Execution.EntryPoint); err != nil {
		fmt.Fprintf(os.Stderr, "vcpu: loading image: %v\n", err)
		os.Exit(1)
	}
	machine.CPU.SetSP(cfg.Execution.InitialSP)

	runErr := machine.Run()

	if *verbose || runErr != nil {
		printState(machine)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "vcpu: halted: %v\n", runErr)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func applyOverrides(cfg *config.Config, localSize, remoteSize uint, entryStr string, maxCycles uint64) {
	if localSize != 0 {
		cfg.Memory.LocalSize = uint32(localSize)
	}
	if remoteSize != 0 {
		cfg.Memory.RemoteSize = uint32(remoteSize)
	}
	if entryStr != "" {
		if v, err := parseAddress(entryStr); err == nil {
			cfg.Execution.EntryPoint = v
		}
	}
	if maxCycles != 0 {
		cfg.Execution.MaxCycles = maxCycles
	}
}

func parseAddress(s string) (uint32, error) {
	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		v, err := strconv.ParseUint(hex, 16, 32)
		return uint32(v), err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

func printState(m *vm.VM) {
	fmt.Printf("cycles: %d\n", m.CPU.Cycles)
	for i := 0; i < 16; i++ {
		fmt.Printf("R%-2d = 0x%08X\n", i, m.CPU.GetRegister(i))
	}
	a := m.CPU.APSR()
	fmt.Printf("NZCVQ = %v %v %v %v %v  GE = %v\n", a.N, a.Z, a.C, a.V, a.Q, a.GE)
}
