package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"github.com/robotcell/cellsim/cell"
	"github.com/robotcell/cellsim/kinematics"
	"github.com/robotcell/cellsim/stats"
	"github.com/robotcell/cellsim/utils"
)

func solutionTable(robot *cell.Robot, sol kinematics.Solution) string {
	t := table.NewWriter()
	revolute := robot.Model().Topology() == kinematics.SixAxis
	if revolute {
		t.AppendHeader(table.Row{"#", "Radians", "Degrees"})
	} else {
		t.AppendHeader(table.Row{"#", "Offset (mm)"})
	}
	for i, in := range sol.Inputs {
		if revolute {
			t.AppendRow(table.Row{i + 1, fmt.Sprintf("%.6f", in.Value), fmt.Sprintf("%.3f", utils.RadToDeg(in.Value))})
			continue
		}
		t.AppendRow(table.Row{i + 1, fmt.Sprintf("%.3f", in.Value)})
	}
	return t.Render()
}

func summaryTable(store *stats.Store) string {
	t := table.NewWriter()
	t.SetTitle("session %s", store.Session())
	t.AppendHeader(table.Row{"Series", "Channel", "Count", "Min", "Max", "Mean", "StdDev"})
	for _, series := range store.Series() {
		for _, channel := range store.Channels(series) {
			s, err := store.Summarize(series, channel)
			if err != nil {
				continue
			}
			t.AppendRow(table.Row{
				series, channel, s.Count,
				fmt.Sprintf("%.3f", s.Min),
				fmt.Sprintf("%.3f", s.Max),
				fmt.Sprintf("%.3f", s.Mean),
				fmt.Sprintf("%.3f", s.StdDev),
			})
		}
	}
	return t.Render()
}

func appendState(t table.Writer, items []stats.StateItem, depth int) {
	for _, item := range items {
		t.AppendRow(table.Row{strings.Repeat("  ", depth) + item.Name, item.Value})
		appendState(t, item.Children, depth+1)
	}
}

func stateTable(items []stats.StateItem) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Value"})
	appendState(t, items, 0)
	return t.Render()
}

func robotsTable(robots map[string]*cell.Robot) string {
	names := lo.Keys(robots)
	sort.Strings(names)
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Robot", "Topology", "Lengths", "Origin"})
	for _, name := range names {
		r := robots[name]
		o := r.Origin().Location
		t.AppendRow(table.Row{
			name,
			r.Model().Topology().String(),
			strings.Join(lo.Map(r.Model().Lengths(), func(l float64, _ int) string {
				return fmt.Sprintf("%g", l)
			}), ", "),
			fmt.Sprintf("X:%.0f, Y:%.0f, Z:%.0f", o.X, o.Y, o.Z),
		})
	}
	return t.Render()
}
