package main

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort       = "8082"
	defaultLatencyMs  = "50"
	defaultResults    = 1
	maxResults        = 5000
	apiVersion        = "1.4"
	referenceYear     = 2024
	minAge, maxAgeExc = 18, 100
)

type Name struct {
	Title string `json:"title"`
	First string `json:"first"`
	Last  string `json:"last"`
}

type DOB struct {
	Date string `json:"date"`
	Age  int    `json:"age"`
}

type Person struct {
	Gender string `json:"gender"`
	Name   Name   `json:"name"`
	DOB    DOB    `json:"dob"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Cell   string `json:"cell"`
	Nat    string `json:"nat"`
}

type Info struct {
	Seed    string `json:"seed"`
	Results int    `json:"results"`
	Page    int    `json:"page"`
	Version string `json:"version"`
}

type Response struct {
	Results []Person `json:"results"`
	Info    Info     `json:"info"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

var (
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)

	// FAIL_STATUS makes every /api/ call answer with that status.
	failStatus = getEnvInt("FAIL_STATUS", "0")
)

var names = map[string]struct {
	male, female, last []string
}{
	"FR": {
		male:   []string{"Jean", "Luc", "Hugo", "Louis", "Paul", "Arthur", "Jules", "Nathan"},
		female: []string{"Camille", "Léa", "Chloé", "Manon", "Inès", "Jade", "Louise", "Emma"},
		last:   []string{"Dupont", "Martin", "Bernard", "Durand", "Lefebvre", "Moreau", "Garnier", "Roux"},
	},
	"DE": {
		male:   []string{"Karl", "Max", "Paul", "Felix", "Jonas", "Lukas"},
		female: []string{"Anna", "Lena", "Mia", "Lea", "Hannah", "Marie"},
		last:   []string{"Maier", "Bauer", "Vogel", "Schmidt", "Fischer", "Weber"},
	},
	"GB": {
		male:   []string{"Oliver", "Harry", "George", "Jack", "Noah"},
		female: []string{"Olivia", "Amelia", "Isla", "Ava", "Emily"},
		last:   []string{"Smith", "Jones", "Taylor", "Brown", "Wilson"},
	},
}

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/api/", handlePeople)

	log.Printf("Mock randomuser API starting on port %s", port)
	log.Printf("Simulated latency: %dms", latencyMs)
	if failStatus != 0 {
		log.Printf("Failing every request with status %d", failStatus)
	}

	srv := &http.Server{
		Addr:              ":" + port,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "randomuser-mock",
		"version": apiVersion,
	})
}

// handlePeople answers like randomuser.me/api: results, gender, nat and seed
// are honoured. The same seed always yields the same batch.
func handlePeople(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}
	if latencyMs > 0 {
		time.Sleep(time.Duration(latencyMs) * time.Millisecond)
	}
	if failStatus != 0 {
		writeJSON(w, failStatus, ErrorResponse{Error: "Uh oh, something has gone wrong. Please tweet us @randomapi about the issue. Thank you."})
		return
	}

	q := r.URL.Query()
	results := defaultResults
	if v := q.Get("results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "results must be a positive integer"})
			return
		}
		results = min(n, maxResults)
	}

	seed := q.Get("seed")
	if seed == "" {
		seed = randomSeed()
	}
	gender := strings.ToLower(q.Get("gender"))
	nats := parseNats(q.Get("nat"))

	rng := rand.New(rand.NewPCG(seedWords(seed)))
	people := make([]Person, results)
	for i := range people {
		people[i] = generate(rng, gender, nats[rng.IntN(len(nats))])
	}

	writeJSON(w, http.StatusOK, Response{
		Results: people,
		Info:    Info{Seed: seed, Results: results, Page: 1, Version: apiVersion},
	})
}

func generate(rng *rand.Rand, gender, nat string) Person {
	if gender != "male" && gender != "female" {
		gender = []string{"male", "female"}[rng.IntN(2)]
	}
	pool := names[nat]

	first := pick(rng, pool.male)
	title := []string{"Mr", "Monsieur"}[rng.IntN(2)]
	if gender == "female" {
		first = pick(rng, pool.female)
		title = []string{"Ms", "Mrs", "Miss", "Madame"}[rng.IntN(4)]
	}
	last := pick(rng, pool.last)

	age := minAge + rng.IntN(maxAgeExc-minAge)
	born := time.Date(referenceYear-age, time.Month(1+rng.IntN(12)), 1+rng.IntN(28), rng.IntN(24), rng.IntN(60), 0, 0, time.UTC)

	return Person{
		Gender: gender,
		Name:   Name{Title: title, First: first, Last: last},
		DOB:    DOB{Date: born.Format("2006-01-02T15:04:05.000Z"), Age: age},
		Email:  strings.ToLower(fmt.Sprintf("%s.%s@example.com", first, last)),
		Phone:  phone(rng, "0"+strconv.Itoa(1+rng.IntN(5))),
		Cell:   phone(rng, "0"+strconv.Itoa(6+rng.IntN(2))),
		Nat:    nat,
	}
}

func phone(rng *rand.Rand, prefix string) string {
	parts := []string{prefix}
	for range 4 {
		parts = append(parts, fmt.Sprintf("%02d", rng.IntN(100)))
	}
	return strings.Join(parts, "-")
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}

func parseNats(raw string) []string {
	var out []string
	for _, n := range strings.Split(strings.ToUpper(raw), ",") {
		if _, ok := names[strings.TrimSpace(n)]; ok {
			out = append(out, strings.TrimSpace(n))
		}
	}
	if len(out) == 0 {
		return []string{"FR", "DE", "GB"}
	}
	return out
}

func seedWords(seed string) (uint64, uint64) {
	sum := sha256.Sum256([]byte(seed))
	return binary.LittleEndian.Uint64(sum[:8]), binary.LittleEndian.Uint64(sum[8:16])
}

func randomSeed() string {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], rand.Uint64())
	return hex.EncodeToString(b[:])
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key, fallback string) int {
	v, err := strconv.Atoi(getEnv(key, fallback))
	if err != nil {
		log.Printf("invalid %s, using %s", key, fallback)
		v, _ = strconv.Atoi(fallback)
	}
	return v
}
