package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/app"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/distributed"
	pkgredis "github.com/irOkoo/exabanque-ftp-refactoring/pkg/redis"
)

// findProfile accepts a numeric id or a profile name.
func findProfile(a *app.App, ref string) (*model.ConnectionProfile, error) {
	if ref == "" {
		return nil, errors.New("-profile is required")
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return a.Repos.Profile.FindByID(uint(id))
	}
	return a.Repos.Profile.FindByName(ref)
}

func runKeygen(a *app.App, args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	profileRef := fs.String("profile", "", "profile id or name")
	keyType := fs.String("type", "rsa", "rsa or ed25519")
	fs.Parse(args)

	p, err := findProfile(a, *profileRef)
	if err != nil {
		return err
	}

	mode := model.CredentialRSAKey
	switch *keyType {
	case "rsa":
	case "ed25519":
		mode = model.CredentialEd25519Key
	default:
		return fmt.Errorf("unknown key type %q", *keyType)
	}

	kp, err := a.Services.Keys.Generate(p.ID, mode)
	if err != nil {
		return err
	}

	color.Green("✓ Generated %s key for profile %s", kp.Type, p.Name)
	fmt.Printf("Fingerprint: %s\n", kp.Fingerprint)
	fmt.Printf("%s:\n%s", kp.PublicKeyName, kp.PublicKey)
	return nil
}

func runTest(a *app.App, args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	profileRef := fs.String("profile", "", "profile id or name")
	fs.Parse(args)

	p, err := findProfile(a, *profileRef)
	if err != nil {
		return err
	}
	if err := a.Services.Tools.Test(context.Background(), p); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	color.Green("✓ Connection test succeeded (%s %s)", p.Protocol, p.Address())
	return nil
}

func runList(a *app.App, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	profileRef := fs.String("profile", "", "profile id or name")
	dir := fs.String("dir", "", "remote directory (default main path)")
	fs.Parse(args)

	p, err := findProfile(a, *profileRef)
	if err != nil {
		return err
	}
	entries, err := a.Services.Tools.List(context.Background(), p, *dir)
	if err != nil {
		return err
	}
	return renderEntries(entries)
}

func runCount(a *app.App, args []string) error {
	fs := flag.NewFlagSet("count", flag.ExitOnError)
	profileRef := fs.String("profile", "", "profile id or name")
	dir := fs.String("dir", "", "remote directory (default main path)")
	fs.Parse(args)

	p, err := findProfile(a, *profileRef)
	if err != nil {
		return err
	}
	n, err := a.Services.Tools.Count(context.Background(), p, *dir)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func runOnce(a *app.App, args []string) error {
	fs := flag.NewFlagSet("run-once", flag.ExitOnError)
	connectorID := fs.Uint("connector", 0, "only this connector")
	fs.Parse(args)

	if err := a.Background.Scheduler.RunCycle(context.Background(), *connectorID); err != nil {
		return err
	}
	color.Green("✓ Cycle finished")
	return nil
}

func runTransactions(a *app.App, args []string) error {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	kind := fs.String("kind", "", "lcr, statement or log")
	state := fs.String("state", "", "filter by state")
	limit := fs.Int("limit", 50, "maximum rows")
	fs.Parse(args)

	txs, err := a.Repos.Transaction.List(model.ActionKind(*kind), model.TransactionState(*state), *limit)
	if err != nil {
		return err
	}
	return renderTransactions(txs)
}

func runTrigger(a *app.App, args []string) error {
	fs := flag.NewFlagSet("trigger", flag.ExitOnError)
	connectorID := fs.Uint("connector", 0, "only this connector")
	fs.Parse(args)

	if !pkgredis.IsEnabled() {
		return errors.New("redis is not enabled: workers cannot be reached, use run-once")
	}
	bus := distributed.NewTriggerBus(pkgredis.GetClient(), nil)
	if err := bus.Publish(context.Background(), *connectorID, "cli"); err != nil {
		return err
	}
	color.Green("✓ Cycle requested")
	return nil
}

// runSend uploads one new lcr transaction through the active lcr connector
// of its company, in that connector's test mode.
func runSend(a *app.App, args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	txID := fs.Uint("tx", 0, "transaction id")
	fs.Parse(args)

	if *txID == 0 {
		return errors.New("-tx is required")
	}
	tx, err := a.Repos.Transaction.FindByID(*txID)
	if err != nil {
		return err
	}
	conn, err := a.Repos.Connector.FindActiveByKind(tx.CompanyID, model.ActionLCR)
	if err != nil {
		return err
	}
	if conn == nil {
		return fmt.Errorf("no active lcr connector for company %d", tx.CompanyID)
	}

	sent, err := a.Services.Engine.RunTransaction(context.Background(), conn, tx.ID)
	if err != nil {
		return err
	}
	color.Green("✓ %s is %s", sent.FileName, sent.State)
	return nil
}
