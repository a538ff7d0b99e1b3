// Package config loads runtime configuration for the imagevault CLI.
//
// Sources are applied in order: built-in defaults, an optional JSON file
// named by -c or -config, then command-line flags.
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      online status check interval (seconds)
//	-f string   sqlite file for the persisted session
//	-g int      gallery decrypt concurrency
//	-o string   download directory
//
// JSON example:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "session_db_path": "imagevault.db",
//	  "gallery_concurrency": 4,
//	  "download_dir": "downloads"
//	}
package config
