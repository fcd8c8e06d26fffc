package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
)

var endpoints = []string{"/stats", "/themes", "/health"}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func newClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        200,
			MaxIdleConnsPerHost: 200,
			IdleConnTimeout:     30 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:8080", "base url of the read API")
	workers := flag.Int("workers", 50, "concurrent clients")
	duration := flag.Duration("duration", 10*time.Second, "length of the run")
	flag.Parse()

	client := newClient()

	fmt.Println("=== MapComplete-MQTT read API load test ===")
	fmt.Printf("Target: %s | Workers: %d | Duration: %s\n\n", *baseURL, *workers, *duration)

	fmt.Print("Waiting for server... ")
	if !waitForServer(client, *baseURL) {
		fmt.Println("FAILED: server not responding")
		return
	}
	fmt.Println("OK")

	run(client, *baseURL, *workers, *duration)
}

func waitForServer(client *http.Client, baseURL string) bool {
	for i := 0; i < 30; i++ {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return true
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func get(client *http.Client, baseURL, endpoint string) result {
	start := time.Now()
	resp, err := client.Get(baseURL + endpoint)
	latency := time.Since(start)
	if err != nil {
		return result{endpoint: endpoint, latency: latency, err: true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint: endpoint, status: resp.StatusCode, latency: latency, err: resp.StatusCode != http.StatusOK}
}

func run(client *http.Client, baseURL string, workers int, duration time.Duration) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	total := atomic.NewInt64(0)
	stop := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- get(client, baseURL, endpoints[rng.Intn(len(endpoints))])
					total.Inc()
				}
			}
		}(time.Now().UnixNano() + int64(i))
	}

	all := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := all[r.endpoint]
			if !ok {
				s = &stats{}
				all[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(all, total.Load(), duration)
}

func printResults(all map[string]*stats, total int64, duration time.Duration) {
	names := make([]string, 0, len(all))
	for ep := range all {
		names = append(names, ep)
	}
	sort.Strings(names)

	fmt.Printf("\n  %-10s %8s %6s %10s %10s %10s %10s\n", "Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 70))

	var errors int64
	for _, ep := range names {
		s := all[ep]
		errors += s.errors
		sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
		var sum time.Duration
		for _, l := range s.latencies {
			sum += l
		}
		avg := time.Duration(0)
		if len(s.latencies) > 0 {
			avg = sum / time.Duration(len(s.latencies))
		}
		fmt.Printf("  %-10s %8d %6d %10s %10s %10s %10s\n", ep, s.count, s.errors,
			round(avg), round(percentile(s.latencies, 50)), round(percentile(s.latencies, 95)), round(percentile(s.latencies, 99)))
	}

	fmt.Println("  " + strings.Repeat("-", 70))
	fmt.Printf("  Total: %d requests, %d errors, %.0f req/s\n", total, errors, float64(total)/duration.Seconds())
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func round(d time.Duration) time.Duration {
	return d.Round(10 * time.Microsecond)
}
