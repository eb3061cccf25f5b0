// Command test-submissions floods a running service with synthetic
// screenshot submissions. It can also serve a canned recognition backend
// so the whole pipeline can be exercised locally without a real
// recognition service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Default configuration constants.
const (
	defaultNumSubmissions = 100
	defaultOrigins        = 4
	defaultWorkers        = 8
	defaultTimeout        = 10 * time.Second
)

var standingsNames = []string{"Falco", "Peach", "Marth", "Jiggs", "Fox", "Sheik", "Doc", "Pika"}

type submissionRequest struct {
	SubmissionID string `json:"submission_id"`
	OriginID     string `json:"origin_id"`
	UploaderID   string `json:"uploader_id"`
	ImageRef     string `json:"image_ref"`
}

func main() {
	var (
		baseURL        = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numSubmissions = flag.Int("submissions", defaultNumSubmissions, "Number of submissions to post")
		origins        = flag.Int("origins", defaultOrigins, "Number of distinct origins to spread submissions across")
		workers        = flag.Int("workers", defaultWorkers, "Number of concurrent posting workers")
		timeout        = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		recognition    = flag.String("serve-recognition", "", "Also serve a fake recognition backend on this address, e.g. :9090")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *recognition != "" {
		go serveRecognition(*recognition)
		// Give the listener a moment before hammering the service.
		time.Sleep(100 * time.Millisecond)
	}

	client := &http.Client{Timeout: *timeout}

	jobs := make(chan submissionRequest)
	var accepted, duplicate, failed atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range jobs {
				switch status := post(ctx, client, *baseURL, req); status {
				case http.StatusAccepted:
					accepted.Add(1)
				case http.StatusOK:
					duplicate.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	start := time.Now()
	for i := 0; i < *numSubmissions; i++ {
		jobs <- submissionRequest{
			SubmissionID: uuid.NewString(),
			OriginID:     fmt.Sprintf("guild-%d", i%*origins),
			UploaderID:   fmt.Sprintf("user-%d", i),
			ImageRef:     fmt.Sprintf("https://cdn.example/shot-%d.png", i),
		}
	}
	close(jobs)
	wg.Wait()

	fmt.Printf("posted %d submissions in %s: %d accepted, %d duplicate, %d failed\n",
		*numSubmissions, time.Since(start).Round(time.Millisecond),
		accepted.Load(), duplicate.Load(), failed.Load())

	if failed.Load() > 0 {
		os.Exit(1)
	}
}

func post(ctx context.Context, client *http.Client, baseURL string, req submissionRequest) int {
	body, err := json.Marshal(req)
	if err != nil {
		return 0
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/submissions", bytes.NewReader(body))
	if err != nil {
		return 0
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

// serveRecognition answers classify and extract calls with a clean
// eight-row standings screen.
func serveRecognition(addr string) {
	type fragment struct {
		Text       string  `json:"text"`
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		Confidence float64 `json:"confidence"`
	}

	fragments := make([]fragment, 0, 16)
	for i, name := range standingsNames {
		y := float64(20 + 30*i)
		fragments = append(fragments,
			fragment{Text: fmt.Sprintf("%d.", i+1), X: 10, Y: y, Confidence: 0.92},
			fragment{Text: name, X: 90, Y: y, Confidence: 0.9},
		)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/classify", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"valid": true, "confidence": 0.95})
	})
	mux.HandleFunc("/extract", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"fragments": fragments})
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		os.Stderr.WriteString("fake recognition server failed: " + err.Error() + "\n")
	}
}
