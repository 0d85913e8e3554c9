package util

import (
	"strings"

	"github.com/ValentinKolb/mmkv/lib/common"
	"github.com/ValentinKolb/mmkv/lib/hashtable"
	"github.com/ValentinKolb/mmkv/lib/serializer"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the flags that describe the store file to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "file"
	cmd.PersistentFlags().StringP(key, "f", "store.mmkv", WrapString("Path of the store file. It is created if it does not exist"))

	key = "capacity"
	cmd.PersistentFlags().Int(key, hashtable.DefaultCapacity, WrapString("Number of slots (a power of two). Must match the capacity the file was created with"))

	key = "lock"
	cmd.PersistentFlags().String(key, "mutex", WrapString("Lock policy: none, mutex or file (file also serialises other processes via <file>.lock)"))

	key = "max-size"
	cmd.PersistentFlags().Int64(key, 0, WrapString("Refuse to map more than this many bytes (0 = 1 GiB)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitStoreConfig initializes configuration from environment variables
func InitStoreConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("mmkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetStoreConfig reads the store configuration from viper
func GetStoreConfig() *common.StoreConfig {
	return &common.StoreConfig{
		Path:         viper.GetString("file"),
		Capacity:     viper.GetInt("capacity"),
		Lock:         viper.GetString("lock"),
		MaxSizeBytes: viper.GetInt64("max-size"),
		LogLevel:     viper.GetString("log-level"),
	}
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.ISerializer, error) {
	return serializer.New(viper.GetString("serializer"))
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
