// shopfront-perf drives a shopper journey against a running API and reports latency and throughput.
//
// Each iteration lists a page of products, loads one of them, adds it to the cart and removes it again.
// Requests go through the same retrying client as the web UI, so the results include retry delays.
//
//	EMAIL=perf@example.com PASSWORD=... go run ./cmd/shopfront-perf
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/nickabs/shopfront/internal/ui/client"
	"github.com/nickabs/shopfront/internal/ui/types"
)

const (
	defaultIterations = 10
	defaultBaseURL    = "http://localhost:8080"
)

type PerformanceMetrics struct {
	TotalIterations      int
	SuccessfulIterations int
	FailedIterations     int
	TotalRequests        int
	Failures             map[string]int // keyed by error kind
	TotalDuration        time.Duration
	TotalLatency         time.Duration // sum of the successful iteration latencies
	AverageLatency       time.Duration
	MinLatency           time.Duration
	MaxLatency           time.Duration
	IterationsPerSecond  float64
}

func newMetrics() *PerformanceMetrics {
	return &PerformanceMetrics{
		MinLatency: time.Hour,
		Failures:   make(map[string]int),
	}
}

// record adds the outcome of one iteration
func (m *PerformanceMetrics) record(latency time.Duration, requests int, err error) {
	m.TotalIterations++
	m.TotalRequests += requests

	if err != nil {
		m.FailedIterations++
		kind := "unknown"
		var apiErr *client.ApiError
		if errors.As(err, &apiErr) {
			kind = apiErr.Kind.String()
		}
		m.Failures[kind]++
		return
	}

	m.SuccessfulIterations++
	m.TotalLatency += latency
	m.MinLatency = min(m.MinLatency, latency)
	m.MaxLatency = max(m.MaxLatency, latency)
}

func (m *PerformanceMetrics) finish(elapsed time.Duration) {
	m.TotalDuration = elapsed
	if m.SuccessfulIterations > 0 {
		m.AverageLatency = m.TotalLatency / time.Duration(m.SuccessfulIterations)
	} else {
		m.MinLatency = 0
	}
	if elapsed > 0 {
		m.IterationsPerSecond = float64(m.SuccessfulIterations) / elapsed.Seconds()
	}
}

func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	email := os.Getenv("EMAIL")
	password := os.Getenv("PASSWORD")
	if email == "" || password == "" {
		log.Fatal("Required environment variables: EMAIL, PASSWORD")
	}

	iterations := defaultIterations
	if env := os.Getenv("ITERATIONS"); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 {
			iterations = n
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	apiClient := client.NewClient(baseURL)

	login, err := apiClient.Login(ctx, email, password)
	if err != nil {
		log.Fatalf("could not log in as %s: %v", email, err)
	}

	fmt.Printf("Starting performance test with %d iterations against %s\n", iterations, baseURL)

	metrics := newMetrics()
	start := time.Now()

	for i := range iterations {
		if ctx.Err() != nil {
			break
		}

		iterationStart := time.Now()
		requests, err := shop(ctx, apiClient, login.Token)
		latency := time.Since(iterationStart)

		metrics.record(latency, requests, err)

		if (i+1)%50 == 0 || i < 10 || err != nil {
			fmt.Printf("Iteration %d/%d: %d requests, %v, error: %v\n", i+1, iterations, requests, latency, err)
		}
	}

	metrics.finish(time.Since(start))
	reportMetrics(metrics)
}

// shop runs one shopper journey and returns the number of requests made
func shop(ctx context.Context, c *client.Client, accessToken string) (int, error) {
	requests := 0

	list, err := c.ListProducts(ctx, types.ProductQuery{Sort: "newest", Limit: 20})
	requests++
	if err != nil {
		return requests, err
	}
	if len(list.Products) == 0 {
		return requests, fmt.Errorf("no products to test with")
	}

	product := list.Products[rand.IntN(len(list.Products))]

	if _, err := c.GetProduct(ctx, product.ID); err != nil {
		return requests + 1, err
	}
	requests++

	if product.Stock < 1 {
		return requests, nil
	}

	if _, err := c.AddToCart(ctx, accessToken, product.ID, 1); err != nil {
		return requests + 1, err
	}
	requests++

	_, err = c.RemoveFromCart(ctx, accessToken, product.ID)
	return requests + 1, err
}

func reportMetrics(metrics *PerformanceMetrics) {
	separator := strings.Repeat("=", 60)
	fmt.Println("\n" + separator)
	fmt.Println("PERFORMANCE TEST RESULTS")
	fmt.Println(separator)
	fmt.Printf("Total Iterations:    %d\n", metrics.TotalIterations)
	fmt.Printf("Successful:          %d\n", metrics.SuccessfulIterations)
	fmt.Printf("Failed:              %d\n", metrics.FailedIterations)
	fmt.Printf("Total Requests:      %d\n", metrics.TotalRequests)
	for kind, count := range metrics.Failures {
		fmt.Printf("  %-18s %d\n", kind+":", count)
	}
	fmt.Println(separator)
	fmt.Printf("TIMING METRICS:\n")
	fmt.Printf("Total Test Duration: %v\n", metrics.TotalDuration)
	fmt.Printf("Average Latency:     %v\n", metrics.AverageLatency)
	fmt.Printf("Min Latency:         %v\n", metrics.MinLatency)
	fmt.Printf("Max Latency:         %v\n", metrics.MaxLatency)
	fmt.Println(separator)
	fmt.Printf("Iterations/Second:   %.2f\n", metrics.IterationsPerSecond)
	fmt.Println(separator)

	if metrics.FailedIterations == 0 {
		fmt.Println("All iterations completed successfully")
	} else {
		fmt.Printf("%d iterations failed\n", metrics.FailedIterations)
	}
}
