/*
 * Copyright 2024 ScopeDB, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package influxdb provides a client for the InfluxDB 1.x HTTP API that fails over between several servers.

# Client

Use NewClient to create a client. Every request is tried against the configured endpoints in order,
and the endpoint that answers is moved to the front:

	client, err := influxdb.NewClient(&influxdb.Config{
		Endpoints: []string{"http://influx-a:8086", "http://influx-b:8086"},
		Database:  "telegraf",
	}, influxdb.WithLogger(logger))
	if err != nil {
		return err
	}
	defer client.Close()

# Write Data

Build data points and write them in line protocol:

	point, err := influxdb.NewDataPoint("cpu",
		[]influxdb.Tag{{Key: "host", Value: "server01"}},
		[]influxdb.Field{{Key: "usage", Value: 0.64}},
		influxdb.At(time.Now()))
	if err != nil {
		return err
	}
	err = client.Write(ctx, point, &influxdb.WriteParams{Precision: influxdb.PrecisionSecond})

Use a PointCable to batch points sent from many goroutines:

	cable := client.PointCable(nil)
	cable.Start(ctx)
	defer cable.Close()

	errCh := cable.Send(point)

# Query Data

Build a query or send raw InfluxQL:

	result, err := client.From("cpu").
		Select("mean(usage)").
		WhereEq("host", "server01").
		GroupBy("time(1m)").
		Execute(ctx)
	if err != nil {
		return err
	}
	if series := result.Series(); series != nil {
		for row, err := range series.Rows() {
			...
		}
	}

A query holding several statements yields one StatementResult per statement; a statement
that failed carries a *StatementError while the others keep their data.
*/
package influxdb
