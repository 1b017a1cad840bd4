package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

func newTable(header ...any) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header(header...)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header = tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}}
		cfg.Row = tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}}
	})
	return table
}

func renderEntries(entries []transfer.Entry) error {
	table := newTable("Name", "Type")
	for _, e := range entries {
		kind := "file"
		if e.Dir {
			kind = "dir"
		}
		if err := table.Append([]string{e.Name, kind}); err != nil {
			return err
		}
	}
	return table.Render()
}

var stateColors = map[model.TransactionState]*color.Color{
	model.StateNew:        color.New(color.FgCyan),
	model.StateTreated:    color.New(color.FgBlue),
	model.StateProcessing: color.New(color.FgYellow),
	model.StateSuccess:    color.New(color.FgGreen),
	model.StateError:      color.New(color.FgRed),
	model.StateTest:       color.New(color.FgMagenta),
}

func renderTransactions(txs []model.Transaction) error {
	table := newTable("ID", "Kind", "File", "State", "Treated", "Company")
	for _, tx := range txs {
		state := string(tx.State)
		if c, ok := stateColors[tx.State]; ok {
			state = c.Sprint(state)
		}
		treated := "-"
		if tx.TreatmentDate != nil {
			treated = tx.TreatmentDate.Format("2006-01-02 15:04:05")
		}
		row := []string{
			fmt.Sprint(tx.ID),
			string(tx.ActionKind),
			tx.FileName,
			state,
			treated,
			fmt.Sprint(tx.CompanyID),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
