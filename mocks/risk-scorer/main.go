package main

import (
	"crypto/sha256"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort      = "8082"
	defaultAPIKey    = "risk-scorer-secret-key"
	defaultLatencyMs = "50"
	defaultMode      = "normal"
)

type ScoreRequest struct {
	LoanID              string  `json:"loan_id"`
	LoanAmountDollars   string  `json:"loan_amount_dollars"`
	IssuedDate          string  `json:"issued_date"`
	InterestRatePercent float64 `json:"interest_rate_percent"`
	TermMonths          int     `json:"term_months"`
}

type ScoreResponse struct {
	LoanID   string   `json:"loan_id"`
	Score    int      `json:"score"`
	Reasons  []string `json:"reasons"`
	ScoredAt string   `json:"scored_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

var (
	apiKey    = getEnv("API_KEY", defaultAPIKey)
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)
	mode      = getEnv("MODE", defaultMode)
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/v1/risk/score", handleScore)

	log.Printf("Mock Risk Scorer API starting on port %s", port)
	log.Printf("Mode: %s", mode)
	log.Printf("Simulated latency: %dms", latencyMs)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "risk-scorer",
		"mode":    mode,
	})
}

// Loan ID prefixes let e2e runs force a failure for a single request
// without restarting the mock in another MODE.
const (
	slowPrefix = "SLOW-"
	downPrefix = "DOWN-"
)

func handleScore(w http.ResponseWriter, r *http.Request) {
	log.Printf("Incoming request: %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := r.Header.Get("X-API-Key")
	if key == "" {
		sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
		return
	}
	if key != apiKey {
		sendError(w, "Invalid API key", http.StatusUnauthorized)
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.LoanID == "" {
		sendError(w, "loan_id is required", http.StatusBadRequest)
		return
	}

	switch {
	case mode == "unavailable" || strings.HasPrefix(req.LoanID, downPrefix):
		sendError(w, "Scoring backend is down", http.StatusServiceUnavailable)
		return
	case mode == "timeout" || strings.HasPrefix(req.LoanID, slowPrefix):
		// Hold the request well past any sane client deadline.
		select {
		case <-time.After(time.Minute):
		case <-r.Context().Done():
			return
		}
		sendError(w, "Scoring backend timed out", http.StatusGatewayTimeout)
		return
	}

	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	resp := score(req)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)

	log.Printf("Scored %s -> %d", req.LoanID, resp.Score)
}

// score derives a stable pseudo-random score from the loan ID, nudged by
// the loan's terms so different inputs read differently.
func score(req ScoreRequest) ScoreResponse {
	hash := sha256.Sum256([]byte(req.LoanID))
	base := int(hash[0]) % 60

	reasons := []string{"Standard credit check"}
	amount, _ := strconv.ParseFloat(req.LoanAmountDollars, 64)
	if amount > 100000 {
		base += 20
		reasons = append(reasons, "Large loan amount")
	}
	if req.InterestRatePercent > 10 {
		base += 15
		reasons = append(reasons, "Elevated interest rate")
	}
	if req.TermMonths > 120 {
		base += 5
		reasons = append(reasons, "Long repayment term")
	}

	return ScoreResponse{
		LoanID:   req.LoanID,
		Score:    min(base, 100),
		Reasons:  reasons,
		ScoredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func sendError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
	log.Printf("Error response: %d - %s", code, message)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %s", key, defaultValue)
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}
