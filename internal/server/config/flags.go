package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-l string   log backend (slog|logrus)
//	-o string   blob backend (s3|badger)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-k string   ledger backend (local|evm)
//	-r string   EVM JSON-RPC URL
//	-x string   access contract address
//	-w string   operator private key (hex)
//	-n int      chain id
//
// Unknown flags are ignored so other components can share os.Args.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|logrus)")
	fs.StringVar(&config.BlobBackend, "o", config.BlobBackend, "blob backend (s3|badger)")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LedgerBackend, "k", config.LedgerBackend, "ledger backend (local|evm)")
	fs.StringVar(&config.EVMRPCURL, "r", config.EVMRPCURL, "EVM JSON-RPC URL")
	fs.StringVar(&config.ContractAddress, "x", config.ContractAddress, "access contract address")
	fs.StringVar(&config.OperatorKey, "w", config.OperatorKey, "operator private key")
	fs.Int64Var(&config.ChainID, "n", config.ChainID, "chain id")

	if err := flagx.ParseKnown(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
