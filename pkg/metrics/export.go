package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Batch runs are short-lived, so metrics are exported once at the end
// instead of being scraped.

// WriteTextfile writes the gathered metrics of g to path in the text
// exposition format, for the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = customRegistry
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("%w: textfile %s: %w", ErrExportFailed, path, err)
	}
	return nil
}

// Push sends the gathered metrics of g to a Pushgateway under job, replacing
// the previous push of that job.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if g == nil {
		g = customRegistry
	}
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("%w: push %s: %w", ErrExportFailed, url, err)
	}
	return nil
}
