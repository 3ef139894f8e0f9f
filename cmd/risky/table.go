package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/ezrec/risky/cpu"
	"github.com/ezrec/risky/emulator"
)

// REGISTER_COLUMNS is the number of registers on a row of the state table.
const REGISTER_COLUMNS = 8

// writeState writes the machine state as tables. Rows of registers that
// are all zero are omitted.
func writeState(w io.Writer, emu *emulator.Emulator) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"pc", "status", "ticks", "halted", "where"})
	table.Append([]string{
		fmt.Sprintf("%04x", emu.Pc),
		fmt.Sprintf("%04x", uint16(emu.Status)),
		fmt.Sprintf("%d", emu.Ticks),
		fmt.Sprintf("%v", emu.Halted),
		emu.Where(emu.Pc),
	})
	table.Render()

	header := []string{"reg"}
	for n := range REGISTER_COLUMNS {
		header = append(header, fmt.Sprintf("+%d", n))
	}

	table = tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for base := 0; base < cpu.REGISTER_COUNT; base += REGISTER_COLUMNS {
		regs := emu.Register[base : base+REGISTER_COLUMNS]
		if base != 0 && allZero(regs) {
			continue
		}
		row := []string{fmt.Sprintf("r%d", base)}
		for _, value := range regs {
			row = append(row, fmt.Sprintf("%04x", value))
		}
		table.Append(row)
	}
	table.Render()
}

// writeLabels writes the known labels as a table.
func writeLabels(w io.Writer, emu *emulator.Emulator) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"label", "addr"})
	for name, addr := range emu.Labels() {
		table.Append([]string{name, fmt.Sprintf("%04x", addr)})
	}
	table.Render()
}

// writeListing writes an assembled program listing as a table.
func writeListing(w io.Writer, prog *cpu.Program) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"line", "addr", "bytes", "source"})
	table.SetAutoWrapText(false)
	for _, st := range prog.Statements {
		if st.Size() == 0 {
			continue
		}
		table.Append([]string{
			fmt.Sprintf("%d", st.LineNo),
			fmt.Sprintf("%04x", st.Addr),
			fmt.Sprintf("% x", st.Bytes()),
			fmt.Sprint(st.Words),
		})
	}
	table.Render()
}

func allZero(values []uint16) bool {
	for _, value := range values {
		if value != 0 {
			return false
		}
	}

	return true
}
