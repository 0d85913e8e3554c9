// Package common holds the configuration and logging setup shared by the
// command line tools: StoreConfig describes how a store file is opened, and
// InitLoggers installs the log format for all package loggers.
package common
