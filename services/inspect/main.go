package main

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/sediment-store/sediment/lib/config"
	"github.com/sediment-store/sediment/lib/logging"
	"github.com/sediment-store/sediment/lib/stores/sqlite"
)

// inspect opens the configured event store and prints a statistics
// snapshot as JSON. Intended for dashboards and cron, which is why it
// only ever touches the reader and metadata pools.
func main() {
	if err := config.InitConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		logging.Fatalf("failed to load config: %v", err)
	}

	store, err := sqlite.InitStore(sqlite.Config{
		Path:           cfg.Database.Path,
		ReaderConns:    cfg.Database.ReaderConns,
		MetadataConns:  cfg.Database.MetadataConns,
		AcquireTimeout: time.Duration(cfg.Database.AcquireTimeoutSeconds) * time.Second,
	})
	if err != nil {
		logging.Fatalf("failed to open event store: %v", err)
	}
	defer store.Close()

	stats, err := store.GetStatistics()
	if err != nil {
		logging.Fatalf("failed to gather statistics: %v", err)
	}

	out, err := jsoniter.MarshalIndent(stats, "", "  ")
	if err != nil {
		logging.Fatalf("failed to encode statistics: %v", err)
	}
	fmt.Println(string(out))
}
