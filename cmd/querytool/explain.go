package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"corpusgraph/internal/query/exec"
	"corpusgraph/internal/query/plan"
	"corpusgraph/internal/query/queryjson"
	"corpusgraph/internal/testcorpus"
)

var (
	implStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	costStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	fragStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Italic(true)
)

var explainCmd = &cobra.Command{
	Use:   "explain [query.json]",
	Short: "Print the physical plan chosen for each disjunction branch",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := readQueryFile(args)
		if err != nil {
			return err
		}
		g := testcorpus.Build()
		disj, err := queryjson.Decode(g, data)
		if err != nil {
			return err
		}
		for i, conj := range disj {
			physical, err := plan.Build(g, conj, cfg.Planner)
			if err != nil {
				return err
			}
			fmt.Printf("branch %d:\n", i)
			printDesc(physical.Desc(), 0)
		}
		return nil
	},
}

func printDesc(d *exec.Desc, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s", indent, implStyle.Render(d.ImplName))
	if d.Cost != nil {
		line += " " + costStyle.Render(fmt.Sprintf("(output~%d)", d.Cost.Output))
	}
	fmt.Println(line)
	if d.QueryFragment != "" {
		fmt.Println(indent + "  " + fragStyle.Render(d.QueryFragment))
	}
	for _, child := range d.Children {
		printDesc(child, depth+1)
	}
}
