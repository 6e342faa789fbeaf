package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDumpCommand() *cobra.Command {
	var withMetrics bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the settings the engine would persist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnvironment(cmd, func(ctx context.Context, env *environment) error {
				data, err := yaml.Marshal(env.service.ExportSettings())
				if err != nil {
					return errbuilder.New().
						WithCode(errbuilder.CodeInternal).
						WithMsg("failed to encode settings").
						WithCause(err)
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
				if !withMetrics {
					return nil
				}
				families, err := env.metrics.Registry.Gather()
				if err != nil {
					return errbuilder.New().
						WithCode(errbuilder.CodeInternal).
						WithMsg("failed to gather metrics").
						WithCause(err)
				}
				for _, line := range metricLines(families) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "Also print engine metrics for this run")
	return cmd
}

// metricLines flattens counters and histogram counts into sorted
// "name{labels} value" lines.
func metricLines(families []*dto.MetricFamily) []string {
	lines := []string{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", pair.GetName(), pair.GetValue()))
			}
			name := family.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, metric.GetCounter().GetValue()))
			case metric.GetHistogram() != nil:
				lines = append(lines, fmt.Sprintf("%s_count %d", name, metric.GetHistogram().GetSampleCount()))
			}
		}
	}
	sort.Strings(lines)
	return lines
}
