package config

const (
	defaultDataDir            = "~/.local/share/quill/data"
	defaultBlobDir            = "~/.local/share/quill/blobs"
	defaultLogDir             = "~/.local/share/quill/logs"
	defaultAPIBind            = "127.0.0.1:7910"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultJobPollInterval    = 5
	defaultErrorRetryInterval = 10
	defaultWorkerCount        = 2
	defaultRequestTimeout     = 60
	defaultRetryAttempts      = 3
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			BlobDir: defaultBlobDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Extractor: Extractor{
			RequestTimeout: defaultRequestTimeout,
			RetryAttempts:  defaultRetryAttempts,
		},
		Workflow: Workflow{
			JobPollInterval:    defaultJobPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			WorkerCount:        defaultWorkerCount,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
