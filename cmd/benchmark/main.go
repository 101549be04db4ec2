package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	workload    string
	accounts    int
)

// Metrics
var (
	totalRequests uint64
	accepted201   uint64 // Debits approved
	rejected200   uint64 // Debits refused by policy (recorded as events)
	conflict409   uint64 // Optimistic-concurrency aborts
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "uniform", "Workload type: uniform | hotspot")
	flag.IntVar(&accounts, "accounts", 50, "Number of accounts to create for the run")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	ids, err := createAccounts()
	if err != nil {
		log.Fatalf("Account setup failed: %v", err)
	}
	log.Printf("Created %d benchmark accounts", len(ids))

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start, ids)
	}

	wg.Wait()
	printResults(time.Since(start))
}

// createAccounts opens the benchmark accounts and funds each with an initial
// cash deposit so withdrawals have something to debit.
func createAccounts() ([]string, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	ids := make([]string, 0, accounts)

	for i := 0; i < accounts; i++ {
		createBody, _ := json.Marshal(map[string]string{
			"customer_name": fmt.Sprintf("Bench Account %d", i),
			"currency":      "USD",
		})
		resp, err := client.Post(targetURL+"/api/v1/accounts", "application/json", bytes.NewBuffer(createBody))
		if err != nil {
			return nil, err
		}
		var created struct {
			ID string `json:"id"`
		}
		err = json.NewDecoder(resp.Body).Decode(&created)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		depositBody, _ := json.Marshal(map[string]interface{}{
			"amount":   100000,
			"currency": "USD",
		})
		resp, err = client.Post(targetURL+"/api/v1/accounts/"+created.ID+"/deposits", "application/json", bytes.NewBuffer(depositBody))
		if err != nil {
			return nil, err
		}
		resp.Body.Close()

		ids = append(ids, created.ID)
	}
	return ids, nil
}

func worker(wg *sync.WaitGroup, start time.Time, ids []string) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		id := pickAccount(ids)
		amount := int64(100)

		// Mix deposits in so balances do not drain to constant rejections.
		endpoint := "/withdrawals"
		if rand.Float32() < 0.25 {
			endpoint = "/deposits"
		}

		payload := map[string]interface{}{
			"amount":   amount,
			"currency": "USD",
		}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest("POST", targetURL+"/api/v1/accounts/"+id+endpoint, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 201:
			atomic.AddUint64(&accepted201, 1)
		case 200:
			atomic.AddUint64(&rejected200, 1)
		case 409:
			atomic.AddUint64(&conflict409, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func pickAccount(ids []string) string {
	if workload == "hotspot" {
		// Hotspot: 90% of traffic goes to the first two accounts
		if rand.Float32() < 0.90 {
			return ids[rand.Intn(2)]
		}
	}
	return ids[rand.Intn(len(ids))]
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	a201 := atomic.LoadUint64(&accepted201)
	r200 := atomic.LoadUint64(&rejected200)
	c409 := atomic.LoadUint64(&conflict409)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()
	abortRate := float64(c409) / float64(total) * 100

	results := map[string]interface{}{
		"workload":        workload,
		"duration_sec":    d.Seconds(),
		"total_requests":  total,
		"throughput_tps":  tps,
		"debits_accepted": a201,
		"debits_rejected": r200,
		"aborts_conflict": c409,
		"abort_rate_pct":  abortRate,
		"errors":          fErr,
	}

	// Print JSON for the python plotter to consume
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	// Also save to file
	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
