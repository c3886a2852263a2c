package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("VIEWER_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	// 1. Health Check
	checkEndpoint(baseURL, "GET", "/health", 200)

	// 2. Initial load settles into success or error
	state := waitForSettled(baseURL)
	fmt.Printf("Initial state: %s\n", state["kind"])

	// 3. Retry
	checkEndpoint(baseURL, "POST", "/portfolio/retry", 200)

	// 4. Refresh
	checkEndpoint(baseURL, "POST", "/portfolio/refresh", 200)

	// 5. Toggle summary twice
	checkEndpoint(baseURL, "POST", "/portfolio/toggle", 200)
	checkEndpoint(baseURL, "POST", "/portfolio/toggle", 200)

	// 6. Cache status
	checkEndpoint(baseURL, "GET", "/cache/status", 200)

	// 7. Metrics
	checkEndpoint(baseURL, "GET", "/metrics", 200)

	fmt.Println("ALL TESTS PASSED")
}

func waitForSettled(baseURL string) map[string]interface{} {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		body := checkEndpoint(baseURL, "GET", "/portfolio", 200)
		var st map[string]interface{}
		if err := json.Unmarshal(body, &st); err != nil {
			log.Fatalf("Decode state failed: %v", err)
		}
		if st["kind"] != "loading" {
			return st
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Fatal("Portfolio never left the loading state")
	return nil
}

func checkEndpoint(baseURL, method, path string, expectedStatus int) []byte {
	fmt.Printf("Testing %s %s...\n", method, path)
	req, _ := http.NewRequest(method, baseURL+path, nil)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	if path != "/metrics" {
		fmt.Printf("Response: %s\n", string(respBody))
	}
	return respBody
}
