package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type createdLead struct {
	ID int64 `json:"id"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:5000", "Base URL of the lead API")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 200, "Requests per second limit")
	withNotes := flag.Bool("notes", false, "Attach a note to every created lead")
	flag.Parse()

	leadsURL := strings.TrimRight(*baseURL, "/") + "/leads"

	log.Printf("Starting load test on %s", leadsURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d, Notes: %t", *concurrency, *duration, *rps, *withNotes)

	var wg sync.WaitGroup
	var createdCount, noteCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 50) // Allow bursts up to 50

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{
				Timeout: 5 * time.Second,
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
					if err := limiter.Wait(ctx); err != nil {
						return
					}

					payload, _ := json.Marshal(map[string]string{
						"company_name": "Load Test " + uuid.NewString(),
						"status":       "new",
						"summary":      fmt.Sprintf("created by worker %d", workerID),
					})

					id, err := post(ctx, client, leadsURL, payload)
					if err != nil {
						errorCount.Add(1)
						continue
					}
					createdCount.Add(1)

					if !*withNotes {
						continue
					}
					if err := limiter.Wait(ctx); err != nil {
						return
					}
					notePayload, _ := json.Marshal(map[string]string{"note": "load test note"})
					if _, err := post(ctx, client, fmt.Sprintf("%s/%d/notes", leadsURL, id), notePayload); err != nil {
						errorCount.Add(1)
						continue
					}
					noteCount.Add(1)
				}
			}
		}(i)
	}

	wg.Wait()

	totalRequests := createdCount.Load() + noteCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Leads created (201): %d", createdCount.Load())
	log.Printf("Notes created (201): %d", noteCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}

// post sends payload and returns the id from a 201 response body.
func post(ctx context.Context, client *http.Client, url string, payload []byte) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var created createdLead
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, err
	}
	return created.ID, nil
}
