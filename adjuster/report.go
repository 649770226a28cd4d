package adjuster

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/the-lightning-land/feeadjust/fdb"
)

const UnknownRate = "Unknown Rate"

var ReportHeader = []string{"Peer", "Out Fee", "Public Key"}

type Report struct {
	Rows []fdb.Row
}

// BuildReport lists every channel partner with the highest fee rate this
// node charges on any of its channels with that peer. Peers that were
// resolved as targets are highlighted.
func BuildReport(peers []PeerAlias, channels []*fdb.Channel, targets []fdb.PeerTarget,
	feeRates []*fdb.FeeRate) *Report {

	targeted := make(map[fdb.PubKey]bool)
	for _, target := range targets {
		if target.Resolved() {
			targeted[target.PubKey] = true
		}
	}

	report := &Report{Rows: make([]fdb.Row, 0, len(peers))}
	for _, peer := range peers {
		chanPoints := make(map[fdb.ChanPoint]struct{})
		for _, channel := range channels {
			if channel.ToNode == peer.PubKey {
				chanPoints[channel.ChanPoint] = struct{}{}
			}
		}

		var found bool
		var rate int64
		for _, feeRate := range feeRates {
			if _, ok := chanPoints[feeRate.ChanPoint]; !ok {
				continue
			}

			if !found || feeRate.FeeRatePpm > rate {
				rate = feeRate.FeeRatePpm
			}
			found = true
		}

		row := fdb.Row{
			Alias:       peer.Alias,
			OutFee:      UnknownRate,
			PubKey:      peer.PubKey,
			Highlighted: targeted[peer.PubKey],
		}

		if row.Alias == "" {
			row.Alias = peer.PubKey.Short()
		}

		if found {
			row.OutFee = FormatFeeRate(rate)
		}

		report.Rows = append(report.Rows, row)
	}

	return report
}

// Cells returns the report as plain table cells, header first.
func (r *Report) Cells() [][]string {
	cells := [][]string{ReportHeader}
	for _, row := range r.Rows {
		cells = append(cells, []string{row.Alias, row.OutFee, string(row.PubKey)})
	}

	return cells
}

// Table renders the report, coloring highlighted peers green.
func (r *Report) Table() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	header := table.Row{}
	for _, cell := range ReportHeader {
		header = append(header, cell)
	}
	t.AppendHeader(header)

	for _, row := range r.Rows {
		cells := table.Row{row.Alias, row.OutFee, string(row.PubKey)}

		if row.Highlighted {
			for i, cell := range cells {
				cells[i] = text.FgGreen.Sprint(cell)
			}
		}

		t.AppendRow(cells)
	}

	return t.Render()
}
