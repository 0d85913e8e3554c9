package kv

import (
	"fmt"
	"io"

	"github.com/ValentinKolb/mmkv/cmd/util"
	"github.com/ValentinKolb/mmkv/lib/common"
	"github.com/ValentinKolb/mmkv/lib/db"
	"github.com/ValentinKolb/mmkv/lib/db/engines/mmht"
	"github.com/ValentinKolb/mmkv/lib/lockmgr"
	"github.com/ValentinKolb/mmkv/lib/store"
	"github.com/ValentinKolb/mmkv/lib/store/lstore"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
)

var (
	cliLog = logger.GetLogger("cli")

	localStore store.IStore

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value store operations on a store file",
		PersistentPreRunE:  setupKVStore,
		PersistentPostRunE: closeKVStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitStoreConfig)

	// Add store flags to the KV command
	util.SetupStoreFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(countCmd)
	KeyValueCommands.AddCommand(compactCmd)
	KeyValueCommands.AddCommand(clearCmd)
	KeyValueCommands.AddCommand(infoCmd)
	KeyValueCommands.AddCommand(exportCmd)
	KeyValueCommands.AddCommand(importCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVStore opens the store file named by the configuration
func setupKVStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetStoreConfig()
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := common.InitLoggers(*config); err != nil {
		return err
	}

	lock, err := lockmgr.Parse(config.Lock, config.Path)
	if err != nil {
		return err
	}

	localStore, err = lstore.NewLocalStore(func() (db.KVDB, error) {
		return mmht.OpenShared(config.Path, &mmht.Options{
			Capacity: config.Capacity,
			Lock:     lock,
			MaxSize:  config.MaxSizeBytes,
		})
	})
	if err != nil {
		// the lock belongs to the table only once it is open
		if closer, ok := lock.(io.Closer); ok {
			_ = closer.Close()
		}
		return err
	}

	cliLog.Debugf("opened %s (capacity %d, lock %s)", config.Path, config.Capacity, config.Lock)
	return nil
}

// closeKVStore unmaps the store file after the command has run
func closeKVStore(_ *cobra.Command, _ []string) error {
	if localStore == nil {
		return nil
	}
	err := localStore.Close()
	if err != nil {
		cliLog.Errorf("failed to close store: %v", err)
	}
	localStore = nil
	return err
}
