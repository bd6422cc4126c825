package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/sKV/cmd/util"
	"github.com/ValentinKolb/sKV/rpc/client"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/jackc/puddle/v2"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for sKV servers",
		Long:    "Runs put, get, rm, mixed and pipelined benchmarks against a sKV server. Every worker acquires a connection from a pool, enqueues its command and releases the connection before awaiting the response, so concurrent commands are pipelined over the pooled connections.",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix    = "__test"
	perfNumThreads   = 10
	perfConnections  = 2
	perfOps          = 10000
	perfBatchSize    = 100
	perfValueSize    = 16
	perfKeySpread    = 100
	perfSkip         = make([]string, 0)
	perfValue        = ""
	perfPercentiles  = []float64{0.5, 0.99}
	perfResultHeader = []string{
		"Test", "Ops", "Errors", "Duration", "OpsPerSec", "MeanLatency", "P50Latency", "P99Latency", "MaxLatency",
		"Endpoint", "Transport", "TimeoutSec",
		"Threads", "Connections", "BatchSize", "ValueSize", "Keys Count",
	}
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of worker goroutines"))
	key = "connections"
	perfTestCmd.Flags().Int(key, 2, util.WrapString("Number of pooled connections shared by the workers"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("Number of operations per benchmark"))
	key = "batch-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many commands a worker enqueues before awaiting the flush (pipelined benchmark only)"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 16, util.WrapString("Size of the values written by the benchmarks (in bytes)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumThreads = viper.GetInt("threads")
	perfConnections = viper.GetInt("connections")
	perfOps = viper.GetInt("ops")
	perfBatchSize = viper.GetInt("batch-size")
	perfValueSize = viper.GetInt("value-size")
	perfKeySpread = viper.GetInt("keys")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfNumThreads <= 0 || perfConnections <= 0 || perfOps <= 0 || perfBatchSize <= 0 || perfKeySpread <= 0 {
		return fmt.Errorf("threads, connections, ops, batch-size and keys must be positive")
	}
	if perfValueSize <= 0 {
		return fmt.Errorf("value-size must be positive")
	}

	// values must not contain spaces
	perfValue = strings.Repeat("x", perfValueSize)
	return nil
}

// perfResult is the outcome of one benchmark
type perfResult struct {
	name     string
	skipped  bool
	ops      int64
	errors   int64
	duration time.Duration
	latency  gometrics.Timer
}

func (r *perfResult) opsPerSec() float64 {
	if r.duration <= 0 {
		return 0
	}
	return float64(r.ops) / r.duration.Seconds()
}

// perfOp enqueues the i-th operation of a benchmark
type perfOp func(m *client.RPCMap, i int) *client.Command

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for sKV servers")

	config := util.GetClientConfig()

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Threads: %d, Connections: %d, Ops: %d\n", perfNumThreads, perfConnections, perfOps)
	fmt.Println()

	pool, err := newClientPool(config)
	if err != nil {
		return err
	}
	defer pool.Close()

	fmt.Println("starting tests...")

	results := make([]*perfResult, 0, 5)

	getKey, iter := getKeys("put")
	results = append(results, runBenchmark("put", pool, config, func(m *client.RPCMap, i int) *client.Command {
		return m.Put(getKey(i), perfValue)
	}, iter))

	getKey, iter = getKeys("get")
	results = append(results, runBenchmark("get", pool, config, func(m *client.RPCMap, i int) *client.Command {
		return m.Get(getKey(i))
	}, iter))

	getKey, iter = getKeys("rm")
	results = append(results, runBenchmark("rm", pool, config, func(m *client.RPCMap, i int) *client.Command {
		return m.Remove(getKey(i))
	}, iter))

	getKey, iter = getKeys("mixed")
	results = append(results, runBenchmark("mixed", pool, config, func(m *client.RPCMap, i int) *client.Command {
		key := getKey(i)
		switch i % 4 {
		case 0:
			return m.Put(key, perfValue)
		case 1:
			return m.Get(key)
		case 2:
			return m.Remove(key)
		default:
			return m.Size()
		}
	}, iter))

	getKey, iter = getKeys("pipelined")
	results = append(results, runPipelined("pipelined", pool, config, func(m *client.RPCMap, i int) *client.Command {
		return m.Put(getKey(i), perfValue)
	}, iter))

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, config); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

// runBenchmark executes perfOps operations on perfNumThreads workers. A worker holds a pooled
// connection only while enqueuing, the response is awaited after the connection was released.
func runBenchmark(name string, pool *puddle.Pool[*client.RPCMap], config *common.ClientConfig, op perfOp, iter func(func(string))) *perfResult {
	result := &perfResult{name: name, latency: gometrics.NewTimer()}
	if shouldSkip(name) {
		result.skipped = true
		printResult(result)
		return result
	}

	prepareKeys(iter)
	defer cleanupKeys(name, iter)

	var next atomic.Int64
	var errCount atomic.Int64
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < perfNumThreads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= perfOps {
					return
				}

				opStart := time.Now()
				cmd, err := withClient(pool, func(m *client.RPCMap) *client.Command { return op(m, i) })
				if err == nil {
					_, _, err = cmd.Get(config.Timeout())
				}
				result.latency.UpdateSince(opStart)

				if err != nil {
					errCount.Add(1)
					client.Logger.Debugf("(%s) - operation %d failed: %v", name, i, err)
				}
			}
		}()
	}
	wg.Wait()

	result.duration = time.Since(start)
	result.ops = int64(perfOps)
	result.errors = errCount.Load()
	printResult(result)
	return result
}

// runPipelined lets every worker enqueue perfBatchSize commands on one connection and then
// await the flush of that connection. The latency is measured per batch.
func runPipelined(name string, pool *puddle.Pool[*client.RPCMap], config *common.ClientConfig, op perfOp, iter func(func(string))) *perfResult {
	result := &perfResult{name: name, latency: gometrics.NewTimer()}
	if shouldSkip(name) {
		result.skipped = true
		printResult(result)
		return result
	}

	defer cleanupKeys(name, iter)

	var next atomic.Int64
	var errCount atomic.Int64
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < perfNumThreads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				first := int(next.Add(int64(perfBatchSize)) - int64(perfBatchSize))
				if first >= perfOps {
					return
				}
				last := min(first+perfBatchSize, perfOps)

				batchStart := time.Now()
				if err := runBatch(pool, config, op, first, last); err != nil {
					errCount.Add(int64(last - first))
					client.Logger.Debugf("(%s) - batch %d-%d failed: %v", name, first, last, err)
				}
				result.latency.UpdateSince(batchStart)
			}
		}()
	}
	wg.Wait()

	result.duration = time.Since(start)
	result.ops = int64(perfOps)
	result.errors = errCount.Load()
	printResult(result)
	return result
}

// runBatch enqueues the operations [first, last) on one pooled connection and awaits their responses
func runBatch(pool *puddle.Pool[*client.RPCMap], config *common.ClientConfig, op perfOp, first, last int) error {
	res, err := pool.Acquire(context.Background())
	if err != nil {
		return err
	}
	m := res.Value()

	for i := first; i < last; i++ {
		op(m, i)
	}
	err = m.AwaitFlush(config.Timeout())
	releaseClient(res)
	return err
}

// --------------------------------------------------------------------------
// Connection pool
// --------------------------------------------------------------------------

func newClientPool(config *common.ClientConfig) (*puddle.Pool[*client.RPCMap], error) {
	pool, err := puddle.NewPool(&puddle.Config[*client.RPCMap]{
		Constructor: func(ctx context.Context) (*client.RPCMap, error) {
			return newClient(config)
		},
		Destructor: func(m *client.RPCMap) {
			_ = m.Close()
		},
		MaxSize: int32(perfConnections),
	})
	if err != nil {
		return nil, err
	}

	// connect eagerly so the handshakes are not part of the first benchmark
	for i := 0; i < perfConnections; i++ {
		if err := pool.CreateResource(context.Background()); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}

// withClient enqueues a command on a pooled connection
func withClient(pool *puddle.Pool[*client.RPCMap], fn func(m *client.RPCMap) *client.Command) (*client.Command, error) {
	res, err := pool.Acquire(context.Background())
	if err != nil {
		return nil, err
	}
	cmd := fn(res.Value())
	releaseClient(res)
	return cmd, nil
}

// releaseClient returns a connection to the pool, closed connections are destroyed
func releaseClient(res *puddle.Resource[*client.RPCMap]) {
	select {
	case <-res.Value().Done():
		res.Destroy()
	default:
		res.Release()
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// prepareKeys writes all keys of a benchmark so reads and removes find a value
func prepareKeys(iter func(func(string))) {
	iter(func(k string) {
		rpcMap.Put(k, perfValue)
	})
	if err := rpcMap.AwaitFlush(rpcMap.Timeout()); err != nil {
		client.Logger.Warningf("error preparing keys: %v", err)
	}
}

// cleanupKeys removes all keys of a benchmark
func cleanupKeys(test string, iter func(func(string))) {
	iter(func(k string) {
		rpcMap.Remove(k)
	})
	if err := rpcMap.AwaitFlush(rpcMap.Timeout()); err != nil {
		client.Logger.Warningf("(%s) - error deleting keys: %v", test, err)
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(r *perfResult) {
	if r.skipped {
		fmt.Printf("%-20sskipped\n", r.name)
		return
	}

	ps := r.latency.Percentiles(perfPercentiles)
	fmt.Printf("%-20s%.0f ops/sec\tmean %s\tp50 %s\tp99 %s\tmax %s\terrors %d\n",
		r.name,
		r.opsPerSec(),
		time.Duration(r.latency.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(r.latency.Max()),
		r.errors,
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []*perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(perfResultHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, r := range results {
		if r.skipped {
			continue
		}

		ps := r.latency.Percentiles(perfPercentiles)
		row := []string{
			r.name,
			strconv.FormatInt(r.ops, 10),
			strconv.FormatInt(r.errors, 10),
			r.duration.String(),
			fmt.Sprintf("%.0f", r.opsPerSec()),
			time.Duration(r.latency.Mean()).String(),
			time.Duration(ps[0]).String(),
			time.Duration(ps[1]).String(),
			time.Duration(r.latency.Max()).String(),
			config.Transport.Endpoint,
			viper.GetString("transport"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfConnections),
			strconv.Itoa(perfBatchSize),
			strconv.Itoa(perfValueSize),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", r.name, err)
		}
	}

	return writer.Error()
}
