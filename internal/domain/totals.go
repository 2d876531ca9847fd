package domain

// Totals sums the counters of every entry per metric kind.
func Totals(entries []CoverageEntry) Counters {
	var total Counters
	for _, e := range entries {
		total = total.Add(e.Counters)
	}
	return total
}

// PackageTotals sums counters per package, keyed by package name.
func PackageTotals(entries []CoverageEntry) map[string]Counters {
	out := make(map[string]Counters)
	for _, e := range entries {
		out[e.Package] = out[e.Package].Add(e.Counters)
	}
	return out
}

// Ratios returns the overall ratio for each metric kind.
func Ratios(entries []CoverageEntry) map[MetricKind]float64 {
	total := Totals(entries)
	out := make(map[MetricKind]float64, len(metricKinds))
	for _, kind := range metricKinds {
		out[kind] = total.Get(kind).Ratio()
	}
	return out
}
