package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient reads back the points the board's Influx sink wrote during
// the E2E suite.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient connects to a running InfluxDB instance.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{org: org, bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// CountPoints returns how many points of measurement were written in the
// last window.
func (c *InfluxClient) CountPoints(ctx context.Context, measurement, window string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-%s) |> filter(fn: (r) => r._measurement == %q)`, c.bucket, window, measurement)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", measurement, err)
	}
	defer res.Close()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

// BucketExists reports whether the suite's bucket was provisioned.
func (c *InfluxClient) BucketExists(ctx context.Context) (bool, error) {
	b, err := c.client.BucketsAPI().FindBucketByName(ctx, c.bucket)
	if err != nil {
		return false, err
	}
	return b != nil, nil
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
