package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jbclabs/levelsystem/adb"
	"github.com/jbclabs/levelsystem/adb/boltdb"
	"github.com/jbclabs/levelsystem/adb/lmdb"
	"github.com/jbclabs/levelsystem/config"
	"github.com/jbclabs/levelsystem/ledger"
	"github.com/jbclabs/levelsystem/logger"
)

var Log = logger.New()

var defaultDataDir string

func init() {
	ledger.Log = Log

	home, err := os.UserHomeDir()
	if err != nil {
		Log.Fatal(err)
	}

	defaultDataDir = home + "/" + config.NAME
}

func main() {
	version := flag.Bool("version", false, "prints version and exits")
	data_dir := flag.String("data-dir", defaultDataDir, "sets the data directory")
	db_backend := flag.String("db", "bolt", "storage backend: bolt or lmdb")
	env_file := flag.String("env-file", "", "load deployment knobs from this env file")
	public_rpc := flag.Bool("public-rpc", false, "required for public RPC nodes: blocks privileged RPC calls and binds on 0.0.0.0")
	rpc_bind_port := flag.Uint("rpc-bind-port", config.RPC_BIND_PORT, "starts RPC server on this port")
	rpc_auth := flag.String("rpc-auth", "", "username:password for RPC Basic Auth")
	log_level := flag.Uint("log-level", 1, "sets the log level")
	non_interactive := flag.Bool("non-interactive", false, "if set, the node will not process the stdinput. Useful for running as a service.")

	flag.Parse()

	if *version {
		fmt.Printf("%s-node v%d.%d.%d\n", config.NAME, config.VERSION_MAJOR, config.VERSION_MINOR, config.VERSION_PATCH)
		os.Exit(0)
	}

	Log.SetLogLevel(uint8(*log_level))

	if err := config.Load(*env_file); err != nil {
		Log.Fatal(err)
	}

	Log.Info("Starting", config.NAME, "node")
	Log.Infof("Version: %d.%d.%d", config.VERSION_MAJOR, config.VERSION_MINOR, config.VERSION_PATCH)
	Log.Infof("Time unit: %d seconds", config.UNIT_SECONDS)
	if config.UNIT_SECONDS != 86400 {
		Log.Warn("Non-production time unit configured, accrual runs accelerated.")
	}

	err := os.MkdirAll(*data_dir, 0o774)
	if err != nil {
		Log.Debug("failed to create data dir:", err)
	}

	var db adb.DB
	switch *db_backend {
	case "bolt":
		db, err = boltdb.New(*data_dir+"/ledger.db", 0o644)
	case "lmdb":
		db, err = lmdb.New(*data_dir+"/lmdb/", 0o755, Log)
	default:
		Log.Fatal("unknown db backend", *db_backend)
	}
	if err != nil {
		Log.Fatal(err)
	}

	eng, err := ledger.New(db)
	if err != nil {
		Log.Fatal(err)
	}

	bind_ip := "127.0.0.1"
	if *public_rpc {
		bind_ip = "0.0.0.0"
	}

	startRpc(eng, bind_ip, uint16(*rpc_bind_port), *public_rpc, *rpc_auth)

	if *non_interactive {
		select {}
	}

	commandLoop(eng)
}
