package kv

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ValentinKolb/mmkv/cmd/util"
	"github.com/ValentinKolb/mmkv/lib/db/engines/mmht"
	"github.com/ValentinKolb/mmkv/lib/serializer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if err := localStore.Set(key, []byte(value)); err != nil {
				return err
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Gets the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if value, found, err := localStore.Get(key); err != nil {
				return err
			} else if !found {
				fmt.Println("key not found")
			} else {
				fmt.Printf("found: %s\n", value)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := localStore.Delete(key); err != nil {
				return err
			} else {
				fmt.Println("deleted successfully")
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if found, err := localStore.Has(key); err != nil {
				return err
			} else if found {
				fmt.Println("key exists")
			} else {
				fmt.Println("key does not exist")
			}
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := localStore.Keys()
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		},
	}
	countCmd = &cobra.Command{
		Use:   "count",
		Short: "Prints the number of keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := localStore.Count()
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
	compactCmd = &cobra.Command{
		Use:   "compact",
		Short: "Rebuilds the store without deleted entries",
		Long: util.WrapString(`Rebuilds the store from its live entries. This shortens
the probe sequences that grew through deletes. Compaction is not atomic: do not run
it while other processes use the file, and keep a backup (see export) if the data matters.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localStore.Compact(); err != nil {
				return err
			} else {
				fmt.Println("compacted successfully")
			}
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localStore.Clear(); err != nil {
				return err
			} else {
				fmt.Println("cleared successfully")
			}
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints information about the store file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := localStore.GetDBInfo()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))

			if viper.GetBool("metrics") {
				fmt.Println()
				mmht.WritePrometheus(os.Stdout)
			}
			return nil
		},
	}
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Writes a snapshot of all entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := util.GetSerializer()
			if err != nil {
				return err
			}

			snap, err := localStore.Snapshot()
			if err != nil {
				return err
			}
			data, err := s.Serialize(snap)
			if err != nil {
				return fmt.Errorf("failed to serialize snapshot: %w", err)
			}

			path := viper.GetString("out")
			if path == "" || path == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
			fmt.Printf("exported %d entries to %s\n", len(snap.Entries), path)
			return nil
		},
	}
	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Sets every entry of a snapshot, other keys are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := util.GetSerializer()
			if err != nil {
				return err
			}

			var data []byte
			path := viper.GetString("in")
			if path == "" || path == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}

			var snap serializer.Snapshot
			if err := s.Deserialize(data, &snap); err != nil {
				return fmt.Errorf("failed to deserialize snapshot: %w", err)
			}
			if err := localStore.Restore(snap); err != nil {
				return err
			}
			fmt.Printf("imported %d entries\n", len(snap.Entries))
			return nil
		},
	}
)

func init() {
	infoCmd.Flags().Bool("metrics", false, util.WrapString("Also print the operation counters in the Prometheus text format"))

	for _, cmd := range []*cobra.Command{exportCmd, importCmd} {
		cmd.Flags().String("serializer", serializer.NameBinary, util.WrapString("Snapshot format (json, gob, binary)"))
	}
	exportCmd.Flags().StringP("out", "o", "-", util.WrapString("File to write the snapshot to (- = stdout)"))
	importCmd.Flags().StringP("in", "i", "-", util.WrapString("File to read the snapshot from (- = stdin)"))
}
