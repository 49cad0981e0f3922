package main

import (
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/named-data/lvs/keystore"
	"github.com/named-data/lvs/lvs"
	"github.com/named-data/lvs/modelcache"
	"github.com/named-data/lvs/ndn"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := loadConfig(configFileFlag(os.Args)); err != nil {
		fmt.Fprintln(os.Stderr, "lvsc: config:", err)
		os.Exit(1)
	}
	initLogger()

	var err error
	switch os.Args[1] {
	case "compile":
		err = cmdCompile(os.Args[2:])
	case "check":
		err = cmdCheck(os.Args[2:])
	case "suggest":
		err = cmdSuggest(os.Args[2:])
	case "dump":
		err = cmdDump(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.WithField("module", "lvsc").Errorf("%v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: lvsc <command> [args]

commands:
  compile <schema.lvs> -o <schema.lvsb>
  check   <schema.lvsb> <pkt-name> <key-name>
  suggest <schema.lvsb> <pkt-name> --keys <sqlite-path>
  dump    <schema.lvsb>`)
}

// configFileFlag pulls "-c <file>" out of argv without disturbing the
// rest of argument parsing, the way a single-shot CLI tool's flags
// are usually layered on top of its subcommands.
func configFileFlag(args []string) string {
	for i, a := range args {
		if a == "-c" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func cmdCompile(args []string) error {
	var src, out string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o":
			if i+1 < len(args) {
				out = args[i+1]
				i++
			}
		default:
			if src == "" {
				src = args[i]
			}
		}
	}
	if src == "" || out == "" {
		return fmt.Errorf("usage: lvsc compile <schema.lvs> -o <schema.lvsb>")
	}

	text, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	model, err := compileWithCache(string(text))
	if err != nil {
		return err
	}
	wire, err := lvs.Encode(model)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, wire, 0o644); err != nil {
		return err
	}

	checker := lvs.NewChecker(model, defaultUserFnsFromConfig())
	logEntry := log.WithField("module", "lvsc")
	logEntry.Infof("compiled %s -> %s (%d nodes)", src, out, len(model.Nodes))
	if missing := checker.ValidateUserFns(); len(missing) > 0 {
		logEntry.Warnf("schema references undefined user functions: %v", missing)
	}
	if roots := checker.RootOfTrust(); len(roots) > 0 {
		logEntry.Infof("root of trust: %v", roots)
	}
	return nil
}

func cmdCheck(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: lvsc check <schema.lvsb> <pkt-name> <key-name>")
	}
	checker, err := loadChecker(args[0])
	if err != nil {
		return err
	}
	pkt, err := ndn.ParseName(args[1])
	if err != nil {
		return err
	}
	key, err := ndn.ParseName(args[2])
	if err != nil {
		return err
	}
	ok, err := checker.Check(pkt, key)
	if err != nil {
		return err
	}
	fmt.Println(ok)
	if !ok {
		os.Exit(1)
	}
	return nil
}

func cmdSuggest(args []string) error {
	var model, pkt, keysPath string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--keys":
			if i+1 < len(args) {
				keysPath = args[i+1]
				i++
			}
		default:
			if model == "" {
				model = args[i]
			} else if pkt == "" {
				pkt = args[i]
			}
		}
	}
	if model == "" || pkt == "" || keysPath == "" {
		return fmt.Errorf("usage: lvsc suggest <schema.lvsb> <pkt-name> --keys <sqlite-path>")
	}

	checker, err := loadChecker(model)
	if err != nil {
		return err
	}
	pktName, err := ndn.ParseName(pkt)
	if err != nil {
		return err
	}

	store, err := keystore.Open(keysPath)
	if err != nil {
		return err
	}
	defer store.Close()
	inventory, err := store.Names()
	if err != nil {
		return err
	}

	lvsInventory := make([]lvs.Name, len(inventory))
	for i, n := range inventory {
		lvsInventory[i] = n
	}
	chosen, ok, err := checker.Suggest(pktName, lvsInventory)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("none")
		os.Exit(1)
	}
	fmt.Println(chosen.(ndn.Name).String())
	return nil
}

func cmdDump(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: lvsc dump <schema.lvsb>")
	}
	model, err := loadModel(args[0])
	if err != nil {
		return err
	}
	dumpModel(model)
	return nil
}

// compileWithCache runs C1-C4 over source, consulting the on-disk
// bbolt model cache (C10) when one is configured via "cache.path" so
// that repeated `lvsc compile` invocations over an unchanged schema
// skip recompilation. With no cache configured it just calls
// lvs.Compile directly.
func compileWithCache(source string) (*lvs.Model, error) {
	path := configStringDefault("cache.path", "")
	if path == "" {
		return lvs.Compile(source)
	}
	cache, err := modelcache.Open(path)
	if err != nil {
		return nil, err
	}
	defer cache.Close()
	return cache.CompileCached(source)
}

func loadModel(path string) (*lvs.Model, error) {
	wire, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return lvs.Decode(wire)
}

func loadChecker(path string) (*lvs.Checker, error) {
	model, err := loadModel(path)
	if err != nil {
		return nil, err
	}
	return lvs.NewChecker(model, defaultUserFnsFromConfig()), nil
}

func defaultUserFnsFromConfig() map[string]lvs.UserFn {
	fns := lvs.DefaultUserFns()
	if !configBoolDefault("userfns.eq", true) {
		delete(fns, "$eq")
	}
	if !configBoolDefault("userfns.eq_type", true) {
		delete(fns, "$eq_type")
	}
	return fns
}
