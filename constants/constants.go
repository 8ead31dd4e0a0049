package constants

import "os"

const (
	EnvConfig         = "TOPLINER_CONFIG"
	EnvOutDir         = "TOPLINER_OUT_DIR"
	EnvLogLevel       = "TOPLINER_LOG_LEVEL"
	EnvDynamoEndpoint = "TOPLINER_DYNAMO_ENDPOINT"
)

const (
	DefaultSampleRate = 44100
	DefaultBlockSize  = 512
	DefaultHTTPAddr   = ":8080"

	DefaultDynamoEndpoint = "http://localhost:8000"
	DefaultDynamoRegion   = "localhost"
	DefaultDynamoTable    = "topliner-renders"
)

func GetConfigPath() string {
	path := os.Getenv(EnvConfig)
	if path != "" {
		return path
	}
	return "./topliner.toml"
}

func GetOutDir() string {
	path := os.Getenv(EnvOutDir)
	if path != "" {
		return path
	}
	return "./out"
}
