package cli

import (
	"context"
	"fmt"
	"log"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/imagevault/internal/api"
)

func (a *App) printVaults(title string, vs []*api.Vault) {
	fmt.Fprintf(a.out, "%s (%d)\n", title, len(vs))
	if len(vs) == 0 {
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  VAULT\tNAME\tIMAGES\tOWNER")
	for _, v := range vs {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\n", v.VaultID, v.Name, v.ImageCount, v.Owner)
	}
	_ = tw.Flush()
}

// Vaults lists the vaults the session holder owns and those shared with it.
func (a *App) Vaults(ctx context.Context) error {
	owned, shared, err := a.vaultService.ListVaults(ctx)
	if err != nil {
		return a.report(err)
	}
	a.printVaults("Owned", owned)
	a.printVaults("Shared with me", shared)
	return nil
}

// MakeVault creates a vault. Words after the first form the name unless
// the last one is given as --id=<vault-id>.
func (a *App) MakeVault(ctx context.Context, args []string) error {
	var vaultID string
	if n := len(args); n > 0 && strings.HasPrefix(args[n-1], "--id=") {
		vaultID = strings.TrimPrefix(args[n-1], "--id=")
		args = args[:n-1]
	}
	if len(args) == 0 {
		return usage(a.out, "mkvault <name> [--id=<vault-id>]")
	}

	v, err := a.vaultService.CreateVault(ctx, vaultID, strings.Join(args, " "), "")
	if err != nil {
		return a.report(err)
	}
	log.Printf("Vault %s created", v.VaultID)
	return nil
}

func (a *App) Grant(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage(a.out, "grant <vault-id> <address> [ttl]")
	}

	var ttl string
	if len(args) == 3 {
		ttl = args[2]
	}
	expiresAt, err := parseExpiry(ttl)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	g, err := a.vaultService.GrantAccess(ctx, args[0], args[1], expiresAt)
	if err != nil {
		return a.report(err)
	}
	log.Printf("Granted %s access to %s (expires: %s)", g.Address, g.VaultID, formatExpiry(g.ExpiresAt))
	return nil
}

func (a *App) Revoke(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage(a.out, "revoke <vault-id> <address>")
	}
	if err := a.vaultService.RevokeAccess(ctx, args[0], args[1]); err != nil {
		return a.report(err)
	}
	log.Printf("Revoked %s from %s", args[1], args[0])
	return nil
}

// Users lists the active grantees of a vault the session holder owns.
func (a *App) Users(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage(a.out, "users <vault-id>")
	}
	grants, err := a.vaultService.ListGrantees(ctx, args[0])
	if err != nil {
		return a.report(err)
	}
	if len(grants) == 0 {
		fmt.Fprintln(a.out, "No active grants")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDRESS\tEXPIRES")
	for _, g := range grants {
		fmt.Fprintf(tw, "%s\t%s\n", g.Address, formatExpiry(g.ExpiresAt))
	}
	return tw.Flush()
}
