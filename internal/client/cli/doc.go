// Package cli provides the interactive imagevault command-line client.
//
// It wires configuration, the local session store, the API client and the
// upload/download orchestrator behind a small REPL. Typical flow: resume the
// saved session or sign in with a wallet key, start a background
// connectivity watcher, then run vault and image commands.
//
// Key features:
//   - Login / Logout with a hex private key (never echoed)
//   - Vault creation, listing and access grants
//   - Encrypted upload, single-image download and gallery decryption
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
