package config

import "time"

// Base application details
const AppName = "textforge"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "textforge.log"
const DefaultStoreDirName = "store"

// Logging (stderr unless a log file is set)
const DefaultLogLevel = "warn"

// History
const DefaultHistoryCapacity = 15

// Persistence
const DefaultStoreBackend = "file"
const DefaultAutosaveDelay = 1 * time.Second
const DefaultAutosaveKey = "text-tool-content"
const DefaultRedisPrefix = "textforge:"

// Execution
const WorkerLocal = "local"     // goroutine in this process
const WorkerProcess = "process" // `textforge worker` subprocess

const SystemClipboard = false
