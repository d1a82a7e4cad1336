package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/akitapower/estimation"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the energy or the area of the requests in a file.",
	Long: "`estimate -f requests.yaml` reads one request or a list of " +
		"requests, in YAML or JSON, and prints the answer of the most " +
		"accurate estimator for each request.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("file")
		area, _ := cmd.Flags().GetBool("area")
		record, _ := cmd.Flags().GetString("record")

		in, err := openInput(file)
		if err != nil {
			return err
		}
		defer in.Close()

		reqs, err := decodeRequests(in)
		if err != nil {
			return err
		}

		registry, err := buildRegistry(cfg, logger)
		if err != nil {
			return err
		}

		if target := recordTarget(record); target != "" {
			if _, err := attachRecorder(registry, target); err != nil {
				return err
			}
		}

		quantity := estimation.QuantityEnergy
		if area {
			quantity = estimation.QuantityArea
		}

		return estimateAll(cmd.Context(), registry, reqs, quantity,
			cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	estimateCmd.Flags().StringP("file", "f", "-",
		"The YAML or JSON file with the requests. - reads the standard input.")
	estimateCmd.Flags().Bool("area", false,
		"Estimate the area instead of the energy.")
	estimateCmd.Flags().String("record", "",
		"Record the estimates into an SQLite file or a clickhouse:// server.")
}

func openInput(file string) (io.ReadCloser, error) {
	if file == "-" || file == "" {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(file)
}

// decodeRequests accepts a single request or a list of requests.
func decodeRequests(r io.Reader) ([]estimation.Request, error) {
	var doc yaml.Node

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no request given")
		}

		return nil, fmt.Errorf("decode requests: %w", err)
	}

	node := &doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	var reqs []estimation.Request

	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&reqs); err != nil {
			return nil, fmt.Errorf("decode requests: %w", err)
		}
	case yaml.MappingNode:
		var req estimation.Request
		if err := node.Decode(&req); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}

		reqs = append(reqs, req)
	default:
		return nil, errors.New("requests must be a mapping or a list")
	}

	for i, req := range reqs {
		if req.ClassName == "" {
			return nil, fmt.Errorf("request %d has no class_name", i)
		}
	}

	return reqs, nil
}

// estimateAll prints one line for each request. A failed request prints its
// error and the others continue. The error returned tells if any request
// failed.
func estimateAll(
	ctx context.Context,
	registry *estimation.Registry,
	reqs []estimation.Request,
	q estimation.Quantity,
	out io.Writer,
) error {
	unit := "pJ"
	if q == estimation.QuantityArea {
		unit = "um^2"
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "class\taction\testimator\taccuracy\t%s (%s)\n", q, unit)

	failed := 0

	for _, req := range reqs {
		var (
			answer estimation.Answer
			err    error
		)

		if q == estimation.QuantityArea {
			answer, err = registry.EstimateArea(ctx, req)
		} else {
			answer, err = registry.EstimateEnergy(ctx, req)
		}

		action := req.ActionName
		if action == "" {
			action = "-"
		}

		if err != nil {
			failed++

			fmt.Fprintf(w, "%s\t%s\t-\t-\terror: %v\n",
				req.ClassName, action, err)

			continue
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\n",
			req.ClassName, action, answer.Estimator, answer.Accuracy,
			answer.Value)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(reqs))
	}

	return nil
}
