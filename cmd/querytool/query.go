package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"corpusgraph/internal/query/queryjson"
	"corpusgraph/internal/testcorpus"
	"corpusgraph/internal/types"
	"corpusgraph/pkg/corpusquery"
)

func readQueryFile(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

var countCmd = &cobra.Command{
	Use:   "count [query.json]",
	Short: "Print the number of matches for a query (reads stdin if omitted)",
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
		n, err := corpusquery.Count(context.Background(), g, disj, cfg)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find [query.json]",
	Short: "Print serialized match tuples for a query (reads stdin if omitted)",
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
		offset, _ := cmd.Flags().GetInt("offset")
		limitFlag, _ := cmd.Flags().GetInt("limit")
		var limit *int
		if limitFlag >= 0 {
			limit = &limitFlag
		}
		results, err := corpusquery.Find(context.Background(), g, disj, offset, limit, cfg)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Println(r)
		}
		return nil
	},
}

func init() {
	findCmd.Flags().Int("offset", 0, "skip this many results")
	findCmd.Flags().Int("limit", -1, "stop after this many results (-1 = unbounded)")
}

var frequencyCmd = &cobra.Command{
	Use:   "frequency [query.json]",
	Short: "Print a frequency table grouped by a node's tok value (demo projection)",
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
		nodeNum, _ := cmd.Flags().GetInt("node")
		def := corpusquery.FrequencyDefinition{{NodeNum: nodeNum, Key: types.TokKey}}
		rows, err := corpusquery.Frequency(context.Background(), g, disj, def, cfg)
		if err != nil {
			return err
		}
		for _, row := range rows {
			fmt.Printf("%d\t%v\n", row.Count, row.Values)
		}
		return nil
	},
}

func init() {
	frequencyCmd.Flags().Int("node", 0, "query node number to project")
}
