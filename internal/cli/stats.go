package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
)

// gardenStats summarizes the registry contents.
type gardenStats struct {
	Gardens        int                `json:"gardens"`
	Owners         int                `json:"owners"`
	Plants         int                `json:"plants"`
	DistinctPlants int                `json:"distinct_plants"`
	Metrics        map[string]float64 `json:"metrics"`
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the registry and its store metrics",
		Args:  cobra.NoArgs,
		RunE: a.withService(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			gs, err := a.svc.ListGardens(ctx)
			if err != nil {
				return err
			}

			stats := gardenStats{Gardens: len(gs)}
			owners := map[string]struct{}{}
			plants := map[string]struct{}{}
			for _, g := range gs {
				owners[g.Owner.String()] = struct{}{}
				stats.Plants += len(g.Plants)
				for _, p := range g.Plants {
					plants[p] = struct{}{}
				}
			}
			stats.Owners = len(owners)
			stats.DistinctPlants = len(plants)

			mfs, err := a.reg.Gather()
			if err != nil {
				return &sysError{err: fmt.Errorf("gather metrics: %w", err)}
			}
			stats.Metrics = flattenMetrics(mfs)

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			return printStats(cmd.OutOrStdout(), stats)
		}),
	}
}

// flattenMetrics reduces gathered families to name{labels} -> value.
// Histograms report their sample count.
func flattenMetrics(mfs []*dto.MetricFamily) map[string]float64 {
	out := make(map[string]float64)
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			out[metricKey(mf.GetName(), m.GetLabel())] = metricValue(mf.GetType(), m)
		}
	}
	return out
}

func metricKey(name string, labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return name
	}
	pairs := make([]string, 0, len(labels))
	for _, l := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return name + "{" + strings.Join(pairs, ",") + "}"
}

func metricValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	case dto.MetricType_SUMMARY:
		return float64(m.GetSummary().GetSampleCount())
	default:
		return m.GetUntyped().GetValue()
	}
}

func printStats(w io.Writer, s gardenStats) error {
	fmt.Fprintf(w, "Gardens:         %s\n", humanize.Comma(int64(s.Gardens)))
	fmt.Fprintf(w, "Owners:          %s\n", humanize.Comma(int64(s.Owners)))
	fmt.Fprintf(w, "Plants:          %s\n", humanize.Comma(int64(s.Plants)))
	fmt.Fprintf(w, "Distinct plants: %s\n", humanize.Comma(int64(s.DistinctPlants)))

	keys := make([]string, 0, len(s.Metrics))
	for k := range s.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "Metrics:")
	for _, k := range keys {
		fmt.Fprintf(w, "  %s %s\n", k, humanize.Ftoa(s.Metrics[k]))
	}
	return nil
}
