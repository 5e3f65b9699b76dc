// Command memdb is a small CLI around the in-memory record store: it can
// run a scripted demo session, and dump or verify snapshot files.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"memdb/internal/config"
	"memdb/internal/field"
	"memdb/internal/imdb"
)

// CLI defines the command-line interface.
var CLI struct {
	Config  string `name:"config" short:"c" help:"YAML config file" type:"path"`
	Verbose bool   `name:"verbose" short:"v" help:"Enable debug logging"`

	Demo   DemoCmd   `cmd:"" help:"Run a scripted demo session and save a snapshot"`
	Dump   DumpCmd   `cmd:"" help:"Load a snapshot and print its schema and records"`
	Verify VerifyCmd `cmd:"" help:"Load a snapshot and report its record count"`
}

type cliContext struct {
	cfg config.Config
	log *slog.Logger
}

// DemoCmd exercises the engine end to end on a device-tracking table.
type DemoCmd struct {
	Out string `arg:"" optional:"" help:"Snapshot output path (default from config)"`
}

func (c *DemoCmd) Run(cc *cliContext) error {
	db := imdb.New(
		imdb.WithHeapFloor(cc.cfg.HeapFloorBytes),
		imdb.WithLogger(cc.log),
	)

	err := db.CreateTable([]field.Column{
		{Name: "ID", Type: field.TypeInt32},
		{Name: "Device", Type: field.TypeMAC},
		{Name: "Name", Type: field.TypeString},
		{Name: "LastSeen", Type: field.TypeEpoch},
		{Name: "Active", Type: field.TypeBool},
		{Name: "Signal", Type: field.TypeFloat32},
	})
	if err != nil {
		return err
	}

	mac1, _ := field.ParseMAC("aa:bb:cc:dd:ee:01")
	mac2, _ := field.ParseMAC("aabbccddee02")

	rows := [][]field.Value{
		{field.Int32(1), field.MAC(mac1), field.String("sensor-lab"), field.Epoch(1700000000), field.Bool(true), field.Float32(-41.5)},
		{field.Int32(2), field.MAC(mac2), field.String("sensor-roof"), field.Epoch(1700000300), field.Bool(false), field.Float32(-67.25)},
	}
	for _, row := range rows {
		if err := db.Insert(row, 0); err != nil {
			return err
		}
	}
	fmt.Printf("inserted %d records\n", db.Count())

	if err := db.Update("ID", field.Int32(2), "Active", field.Bool(true)); err != nil {
		return err
	}
	if err := db.UpdateWithMath("ID", field.Int32(1), "LastSeen", field.MathAdd, 60); err != nil {
		return err
	}

	name, err := db.Select("Name", "ID", field.Int32(2))
	if err != nil {
		return err
	}
	fmt.Printf("record 2 is %q\n", name.S)

	out := c.Out
	if out == "" {
		out = cc.cfg.SnapshotPath
	}
	if err := db.SaveToFile(out); err != nil {
		return err
	}
	fmt.Printf("snapshot written to %s\n", out)
	return nil
}

// DumpCmd prints a snapshot's schema and every stored record.
type DumpCmd struct {
	File string `arg:"" help:"Snapshot file to dump" type:"path"`
}

func (c *DumpCmd) Run(cc *cliContext) error {
	db := imdb.New(
		imdb.WithHeapFloor(cc.cfg.HeapFloorBytes),
		imdb.WithLogger(cc.log),
	)
	if err := db.LoadFromFile(c.File); err != nil {
		return err
	}

	cols := db.Columns()
	for i, col := range cols {
		if i > 0 {
			fmt.Print(" | ")
		}
		fmt.Printf("%s %s", col.Name, col.Type)
	}
	fmt.Println()

	cells, n, err := db.Top(int(db.Count()))
	if errors.Is(err, imdb.ErrNoRecords) {
		fmt.Println("(no records)")
		return nil
	}
	if err != nil {
		return err
	}

	for row := 0; row < n; row++ {
		for i := range cols {
			if i > 0 {
				fmt.Print(" | ")
			}
			fmt.Print(formatValue(cells[row*len(cols)+i]))
		}
		fmt.Println()
	}
	return nil
}

// VerifyCmd loads a snapshot and reports its live record count.
type VerifyCmd struct {
	File string `arg:"" help:"Snapshot file to verify" type:"path"`
}

func (c *VerifyCmd) Run(cc *cliContext) error {
	db := imdb.New(
		imdb.WithHeapFloor(cc.cfg.HeapFloorBytes),
		imdb.WithLogger(cc.log),
	)
	if err := db.LoadFromFile(c.File); err != nil {
		return err
	}
	fmt.Printf("%s: ok, %d live records (%d slots)\n", c.File, db.Count(), db.RecordCount())
	return nil
}

func formatValue(v field.Value) string {
	switch v.Type {
	case field.TypeInt32:
		return fmt.Sprintf("%d", v.I32)
	case field.TypeMAC:
		return field.FormatMAC(v.MAC)
	case field.TypeString:
		return v.S
	case field.TypeEpoch:
		return fmt.Sprintf("%d", v.Epoch)
	case field.TypeBool:
		return fmt.Sprintf("%t", v.B)
	case field.TypeFloat32:
		return fmt.Sprintf("%g", v.F32)
	}
	return "?"
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("memdb"),
		kong.Description("Single-table in-memory record store with binary snapshots."),
	)

	cfg := config.Default()
	if CLI.Config != "" {
		loaded, err := config.Load(CLI.Config)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := ctx.Run(&cliContext{cfg: cfg, log: log}); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}
