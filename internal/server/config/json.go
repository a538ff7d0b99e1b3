package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/imagevault/internal/flagx"
	"github.com/dmitrijs2005/imagevault/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations
// accept "2h" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	SignInMessage               string         `json:"sign_in_message"`
	LogBackend                  string         `json:"log_backend"`
	BlobBackend                 string         `json:"blob_backend"`
	BadgerBlobPath              string         `json:"badger_blob_path"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	LedgerBackend               string         `json:"ledger_backend"`
	LedgerPath                  string         `json:"ledger_path"`
	EVMRPCURL                   string         `json:"evm_rpc_url"`
	ContractAddress             string         `json:"contract_address"`
	OperatorKey                 string         `json:"operator_key"`
	ChainID                     int64          `json:"chain_id"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays the file named by -c/-config onto config. Keys missing
// from the file keep their current values. An unreadable or malformed file
// panics, as a misconfigured server must not start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.SignInMessage, c.SignInMessage)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.BadgerBlobPath, c.BadgerBlobPath)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LedgerBackend, c.LedgerBackend)
	setString(&config.LedgerPath, c.LedgerPath)
	setString(&config.EVMRPCURL, c.EVMRPCURL)
	setString(&config.ContractAddress, c.ContractAddress)
	setString(&config.OperatorKey, c.OperatorKey)
	if c.ChainID != 0 {
		config.ChainID = c.ChainID
	}
}
